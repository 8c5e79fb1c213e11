package checker

import "time"

// NodeResult is the outcome of checking one node.
type NodeResult struct {
    Address  string
    Passed   bool
    // Peers is the last reported peer count, -1 if no call succeeded.
    Peers    int
    Attempts int
    Err      error
    Duration time.Duration
}

// Report lists the nodes checked during a run, in order. A failed run ends
// with the exhausted node; addresses after it are absent.
type Report struct {
    MinPeers   int
    MaxRetries int
    Nodes      []NodeResult
    // Complete is set once every address has been checked.
    Complete   bool
    Started    time.Time
    Finished   time.Time
}

// Passed reports whether the run checked every address and all of them passed.
func (r *Report) Passed() bool {
    if r == nil || !r.Complete || len(r.Nodes) == 0 { return false }
    for _, n := range r.Nodes {
        if !n.Passed { return false }
    }
    return true
}
