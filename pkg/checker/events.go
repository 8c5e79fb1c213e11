package checker

import "time"

type EventType string

const (
    EventRunStart       EventType = "run_start"
    EventNodeStart      EventType = "node_start"
    EventAttempt        EventType = "attempt"
    EventPassed         EventType = "passed"
    EventBelowThreshold EventType = "below_threshold"
    EventAttemptFailed  EventType = "attempt_failed"
    EventRetryWait      EventType = "retry_wait"
    EventNodeFailed     EventType = "node_failed"
    EventNodeDone       EventType = "node_done"
    EventRunDone        EventType = "run_done"
)

// Event describes one step of a run. Only fields relevant to Type are set;
// Attempt is 1-based.
type Event struct {
    Type        EventType
    At          time.Time
    Address     string
    Addresses   []string
    Attempt     int
    MaxAttempts int
    Peers       int
    MinPeers    int
    Delay       time.Duration
    CallTimeout time.Duration
    Err         error
}
