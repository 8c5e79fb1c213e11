package checker

import (
    "errors"
    "fmt"
)

var (
    ErrNoAddresses     = &ConfigError{Reason: "no addresses to check: pass a comma or space separated list"}
    ErrThresholdNotMet = errors.New("checker: peer threshold not met")
)

// ConfigError reports input that prevents a run from starting. No node is
// contacted when a ConfigError is returned.
type ConfigError struct {
    Reason string
    Err    error
}

func (e *ConfigError) Error() string {
    if e.Err != nil { return "checker: " + e.Reason + ": " + e.Err.Error() }
    return "checker: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ExhaustedError is returned when a node used every attempt without
// reporting enough peers. It ends the run; later addresses are not checked.
type ExhaustedError struct {
    Address   string
    MinPeers  int
    Attempts  int
    // LastPeers is the peer count of the last successful call, -1 if none
    // of the calls succeeded.
    LastPeers int
    // LastErr is the last call error, nil if every call succeeded but
    // reported too few peers.
    LastErr   error
}

func (e *ExhaustedError) Error() string {
    msg := fmt.Sprintf("node %s peers below threshold (need >=%d) after %d attempts", e.Address, e.MinPeers, e.Attempts)
    if e.LastErr != nil { msg += ", last error: " + e.LastErr.Error() }
    return msg
}

// Unwrap exposes ErrThresholdNotMet and, when present, the last call error.
func (e *ExhaustedError) Unwrap() []error {
    if e.LastErr == nil { return []error{ErrThresholdNotMet} }
    return []error{ErrThresholdNotMet, e.LastErr}
}
