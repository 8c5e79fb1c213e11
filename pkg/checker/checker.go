package checker

import (
    "context"
    "time"

    "go.opentelemetry.io/otel/attribute"

    "github.com/amirimatin/go-peercheck/pkg/observability/tracing"
)

// Checker runs the sequential peer count check over a list of nodes. It does
// no logging or IO of its own beyond the PeerCounter calls; progress is
// reported through Options.OnEvent.
type Checker struct {
    opts Options
    now  func() time.Time
}

// New constructs a Checker from options, filling defaults.
func New(opts Options) (*Checker, error) {
    if err := opts.Validate(); err != nil {
        return nil, err
    }
    return &Checker{opts: opts.withDefaults(), now: time.Now}, nil
}

// MinPeers returns the threshold in effect.
func (c *Checker) MinPeers() int { return c.opts.MinPeers }

// Run checks addresses strictly in order. Each node gets up to retries+1
// attempts; a node passes on the first call reporting at least MinPeers.
// The first node that exhausts its attempts ends the run with an
// *ExhaustedError. An empty list fails with ErrNoAddresses before any call.
// The returned Report is never nil.
func (c *Checker) Run(ctx context.Context, addresses []string, retries int) (*Report, error) {
    retries = min(max(retries, 0), maxRetries)
    rep := &Report{MinPeers: c.opts.MinPeers, MaxRetries: retries, Started: c.now()}
    defer func() { rep.Finished = c.now() }()
    if len(addresses) == 0 {
        return rep, ErrNoAddresses
    }

    ctx, end := tracing.StartSpan(ctx, "peercheck.run", attribute.Int("nodes", len(addresses)), attribute.Int("max_retries", retries))
    c.emit(Event{Type: EventRunStart, Addresses: append([]string(nil), addresses...), MaxAttempts: retries + 1, MinPeers: c.opts.MinPeers, Delay: c.opts.RetryDelay, CallTimeout: c.opts.CallTimeout})
    for _, addr := range addresses {
        res, err := c.checkNode(ctx, addr, retries)
        rep.Nodes = append(rep.Nodes, res)
        if err != nil {
            end(err)
            return rep, err
        }
    }
    rep.Complete = true
    c.emit(Event{Type: EventRunDone, MinPeers: c.opts.MinPeers})
    end(nil)
    return rep, nil
}

func (c *Checker) checkNode(ctx context.Context, addr string, retries int) (res NodeResult, err error) {
    maxAttempts := retries + 1
    start := c.now()
    res = NodeResult{Address: addr, Peers: -1}
    ctx, end := tracing.StartSpan(ctx, "peercheck.node", attribute.String("address", addr))
    defer func() {
        res.Duration = c.now().Sub(start)
        end(err)
    }()

    c.emit(Event{Type: EventNodeStart, Address: addr, MaxAttempts: maxAttempts, MinPeers: c.opts.MinPeers})
    var lastErr error
    for attempt := 1; attempt <= maxAttempts; attempt++ {
        res.Attempts = attempt
        c.emit(Event{Type: EventAttempt, Address: addr, Attempt: attempt, MaxAttempts: maxAttempts})

        peers, cerr := c.peerCount(ctx, addr)
        switch {
        case cerr != nil:
            if ctx.Err() != nil {
                res.Err = ctx.Err()
                return res, ctx.Err()
            }
            lastErr = cerr
            c.emit(Event{Type: EventAttemptFailed, Address: addr, Attempt: attempt, MaxAttempts: maxAttempts, Err: cerr})
        case peers >= c.opts.MinPeers:
            res.Peers = peers
            res.Passed = true
            c.emit(Event{Type: EventPassed, Address: addr, Attempt: attempt, MaxAttempts: maxAttempts, Peers: peers, MinPeers: c.opts.MinPeers})
            c.emit(Event{Type: EventNodeDone, Address: addr, Attempt: attempt, MaxAttempts: maxAttempts, Peers: peers})
            return res, nil
        default:
            res.Peers = peers
            c.emit(Event{Type: EventBelowThreshold, Address: addr, Attempt: attempt, MaxAttempts: maxAttempts, Peers: peers, MinPeers: c.opts.MinPeers})
        }

        if attempt < maxAttempts {
            c.emit(Event{Type: EventRetryWait, Address: addr, Attempt: attempt + 1, MaxAttempts: maxAttempts, Delay: c.opts.RetryDelay})
            if werr := c.opts.Clock.Sleep(ctx, c.opts.RetryDelay); werr != nil {
                res.Err = werr
                return res, werr
            }
        }
    }

    res.Err = lastErr
    exhausted := &ExhaustedError{Address: addr, MinPeers: c.opts.MinPeers, Attempts: maxAttempts, LastPeers: res.Peers, LastErr: lastErr}
    c.emit(Event{Type: EventNodeFailed, Address: addr, Attempt: maxAttempts, MaxAttempts: maxAttempts, Peers: res.Peers, MinPeers: c.opts.MinPeers, Err: exhausted})
    return res, exhausted
}

func (c *Checker) peerCount(ctx context.Context, addr string) (int, error) {
    cctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
    defer cancel()
    return c.opts.Client.PeerCount(cctx, addr)
}

func (c *Checker) emit(ev Event) {
    if c.opts.OnEvent == nil { return }
    ev.At = c.now()
    c.opts.OnEvent(ev)
}
