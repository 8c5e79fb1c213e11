package checker

import (
    "errors"
    "time"

    "github.com/amirimatin/go-peercheck/pkg/transport"
)

const (
    // DefaultMinPeers is the peer count a node must report to pass.
    DefaultMinPeers = 3
    // DefaultCallTimeout bounds each peer count call.
    DefaultCallTimeout = 1000 * time.Millisecond
    // DefaultRetryDelay is the wait between two attempts on the same node.
    DefaultRetryDelay = 1000 * time.Millisecond
)

// Options carries the dependencies and the fixed run parameters of a Checker.
// Zero values fall back to the package defaults.
type Options struct {
    // Client fetches peer counts (required).
    Client transport.PeerCounter

    // MinPeers is the threshold a node must reach.
    MinPeers int
    // CallTimeout is applied to the context of every attempt.
    CallTimeout time.Duration
    // RetryDelay is waited between attempts, never after the last one.
    RetryDelay time.Duration

    // Clock performs the inter-attempt wait. Tests inject a fake.
    Clock Clock

    // OnEvent, if set, receives progress events synchronously.
    OnEvent func(Event)
}

// Validate performs a minimal validation of Options.
func (o Options) Validate() error {
    if o.Client == nil {
        return errors.New("checker: nil Client")
    }
    if o.MinPeers < 0 {
        return errors.New("checker: negative MinPeers")
    }
    if o.CallTimeout < 0 || o.RetryDelay < 0 {
        return errors.New("checker: negative duration")
    }
    return nil
}

func (o Options) withDefaults() Options {
    if o.MinPeers == 0 { o.MinPeers = DefaultMinPeers }
    if o.CallTimeout == 0 { o.CallTimeout = DefaultCallTimeout }
    if o.RetryDelay == 0 { o.RetryDelay = DefaultRetryDelay }
    if o.Clock == nil { o.Clock = RealClock{} }
    return o
}
