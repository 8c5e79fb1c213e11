package checker

import (
    "context"
    "errors"
    "math"
    "testing"
    "time"
)

type reply struct {
    peers int
    err   error
}

// scriptedCounter replays per-address replies; the last reply repeats.
type scriptedCounter struct {
    replies map[string][]reply
    calls   map[string]int
    order   []string
}

func newScripted(replies map[string][]reply) *scriptedCounter {
    return &scriptedCounter{replies: replies, calls: make(map[string]int)}
}

func (s *scriptedCounter) PeerCount(ctx context.Context, addr string) (int, error) {
    if _, ok := ctx.Deadline(); !ok {
        return 0, errors.New("call without deadline")
    }
    s.order = append(s.order, addr)
    rs := s.replies[addr]
    i := s.calls[addr]
    s.calls[addr]++
    if len(rs) == 0 { return 0, errors.New("unexpected address " + addr) }
    if i >= len(rs) { i = len(rs) - 1 }
    return rs[i].peers, rs[i].err
}

type fakeClock struct {
    sleeps []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
    f.sleeps = append(f.sleeps, d)
    return ctx.Err()
}

func newTestChecker(t *testing.T, pc *scriptedCounter, clk *fakeClock, events *[]Event) *Checker {
    t.Helper()
    opts := Options{Client: pc, Clock: clk}
    if events != nil {
        opts.OnEvent = func(ev Event) { *events = append(*events, ev) }
    }
    c, err := New(opts)
    if err != nil { t.Fatalf("new: %v", err) }
    return c
}

func TestRun_PassesFirstAttemptWithoutSleeping(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 3}}, "b": {{peers: 8}}})
    clk := &fakeClock{}
    c := newTestChecker(t, pc, clk, nil)

    rep, err := c.Run(context.Background(), []string{"a", "b"}, 3)
    if err != nil { t.Fatalf("run: %v", err) }
    if !rep.Passed() { t.Fatalf("expected report to pass: %#v", rep) }
    if len(clk.sleeps) != 0 { t.Fatalf("expected no sleep, got %v", clk.sleeps) }
    if pc.calls["a"] != 1 || pc.calls["b"] != 1 { t.Fatalf("unexpected calls: %v", pc.calls) }
    if rep.Nodes[1].Peers != 8 || rep.Nodes[1].Attempts != 1 { t.Fatalf("unexpected node result: %#v", rep.Nodes[1]) }
}

func TestRun_RetryThenSuccess(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 1}, {peers: 4}}})
    clk := &fakeClock{}
    c := newTestChecker(t, pc, clk, nil)

    rep, err := c.Run(context.Background(), []string{"a"}, 1)
    if err != nil { t.Fatalf("run: %v", err) }
    if len(clk.sleeps) != 1 || clk.sleeps[0] != 1000*time.Millisecond {
        t.Fatalf("expected exactly one 1s sleep, got %v", clk.sleeps)
    }
    if rep.Nodes[0].Attempts != 2 || rep.Nodes[0].Peers != 4 {
        t.Fatalf("unexpected node result: %#v", rep.Nodes[0])
    }
}

func TestRun_ExhaustionWithoutTransportError(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 0}}})
    clk := &fakeClock{}
    c := newTestChecker(t, pc, clk, nil)

    _, err := c.Run(context.Background(), []string{"a"}, 1)
    var ex *ExhaustedError
    if !errors.As(err, &ex) { t.Fatalf("expected ExhaustedError, got %v", err) }
    if ex.Address != "a" || ex.Attempts != 2 || ex.LastErr != nil || ex.LastPeers != 0 {
        t.Fatalf("unexpected exhaustion: %#v", ex)
    }
    if !errors.Is(err, ErrThresholdNotMet) { t.Fatalf("expected ErrThresholdNotMet in chain") }
    if pc.calls["a"] != 2 { t.Fatalf("expected 2 attempts, got %d", pc.calls["a"]) }
    if len(clk.sleeps) != 1 { t.Fatalf("expected one sleep, got %v", clk.sleeps) }
}

func TestRun_ExhaustionKeepsLastError(t *testing.T) {
    boom := errors.New("connection refused")
    pc := newScripted(map[string][]reply{"a": {{peers: 1}, {err: boom}}})
    c := newTestChecker(t, pc, &fakeClock{}, nil)

    _, err := c.Run(context.Background(), []string{"a"}, 2)
    if !errors.Is(err, boom) { t.Fatalf("expected last error in chain, got %v", err) }
    var ex *ExhaustedError
    if !errors.As(err, &ex) || ex.Attempts != 3 || ex.LastPeers != 1 {
        t.Fatalf("unexpected exhaustion: %#v", ex)
    }
    if got := err.Error(); got != "node a peers below threshold (need >=3) after 3 attempts, last error: connection refused" {
        t.Fatalf("unexpected message: %q", got)
    }
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 0}}, "b": {{peers: 10}}})
    c := newTestChecker(t, pc, &fakeClock{}, nil)

    rep, err := c.Run(context.Background(), []string{"a", "b"}, 0)
    if err == nil { t.Fatalf("expected failure") }
    if pc.calls["b"] != 0 { t.Fatalf("second address must not be contacted, calls=%v", pc.calls) }
    if len(rep.Nodes) != 1 || rep.Nodes[0].Passed || rep.Passed() {
        t.Fatalf("unexpected report: %#v", rep)
    }
}

func TestRun_EmptyAddressesIsConfigError(t *testing.T) {
    pc := newScripted(nil)
    c := newTestChecker(t, pc, &fakeClock{}, nil)

    _, err := c.Run(context.Background(), nil, 3)
    if !errors.Is(err, ErrNoAddresses) { t.Fatalf("expected ErrNoAddresses, got %v", err) }
    var ce *ConfigError
    if !errors.As(err, &ce) { t.Fatalf("expected ConfigError, got %T", err) }
    if len(pc.order) != 0 { t.Fatalf("no call expected, got %v", pc.order) }
}

func TestRun_NegativeRetriesMeansSingleAttempt(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 0}}})
    clk := &fakeClock{}
    c := newTestChecker(t, pc, clk, nil)

    _, err := c.Run(context.Background(), []string{"a"}, -5)
    if err == nil { t.Fatalf("expected failure") }
    if pc.calls["a"] != 1 || len(clk.sleeps) != 0 { t.Fatalf("calls=%v sleeps=%v", pc.calls, clk.sleeps) }
}

func TestRun_HugeRetryBudgetStillAttempts(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 1}, {peers: 5}}})
    clk := &fakeClock{}
    c := newTestChecker(t, pc, clk, nil)

    rep, err := c.Run(context.Background(), []string{"a"}, math.MaxInt)
    if err != nil { t.Fatalf("run: %v", err) }
    if pc.calls["a"] != 2 || rep.Nodes[0].Attempts != 2 { t.Fatalf("unexpected attempts: calls=%v node=%#v", pc.calls, rep.Nodes[0]) }
    if rep.MaxRetries != maxRetries { t.Fatalf("max retries = %d, want %d", rep.MaxRetries, maxRetries) }
}

func TestRun_DuplicatesCheckedTwiceInOrder(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 5}}, "b": {{peers: 5}}})
    c := newTestChecker(t, pc, &fakeClock{}, nil)

    if _, err := c.Run(context.Background(), []string{"b", "a", "b"}, 0); err != nil { t.Fatalf("run: %v", err) }
    want := []string{"b", "a", "b"}
    for i := range want {
        if pc.order[i] != want[i] { t.Fatalf("call order %v, want %v", pc.order, want) }
    }
}

func TestRun_CancelledContextStopsWaiting(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{peers: 0}}})
    ctx, cancel := context.WithCancel(context.Background())
    c, err := New(Options{Client: pc, Clock: RealClock{}, RetryDelay: time.Hour, OnEvent: func(ev Event) {
        if ev.Type == EventRetryWait { cancel() }
    }})
    if err != nil { t.Fatalf("new: %v", err) }

    done := make(chan error, 1)
    go func() { _, err := c.Run(ctx, []string{"a"}, 5); done <- err }()
    select {
    case err := <-done:
        if !errors.Is(err, context.Canceled) { t.Fatalf("expected context.Canceled, got %v", err) }
    case <-time.After(2 * time.Second):
        t.Fatalf("run did not stop after cancel")
    }
}

func TestRun_EventSequence(t *testing.T) {
    pc := newScripted(map[string][]reply{"a": {{err: errors.New("HTTP 502 Bad Gateway")}, {peers: 2}, {peers: 3}}})
    var events []Event
    c := newTestChecker(t, pc, &fakeClock{}, &events)

    if _, err := c.Run(context.Background(), []string{"a"}, 2); err != nil { t.Fatalf("run: %v", err) }
    want := []EventType{
        EventRunStart, EventNodeStart,
        EventAttempt, EventAttemptFailed, EventRetryWait,
        EventAttempt, EventBelowThreshold, EventRetryWait,
        EventAttempt, EventPassed, EventNodeDone,
        EventRunDone,
    }
    if len(events) != len(want) { t.Fatalf("got %d events, want %d: %#v", len(events), len(want), events) }
    for i := range want {
        if events[i].Type != want[i] { t.Fatalf("event %d = %s, want %s", i, events[i].Type, want[i]) }
    }
    if events[4].Attempt != 2 || events[4].MaxAttempts != 3 { t.Fatalf("retry wait event: %#v", events[4]) }
}

func TestNew_Validate(t *testing.T) {
    if _, err := New(Options{}); err == nil { t.Fatalf("expected error for nil client") }
    c, err := New(Options{Client: newScripted(nil)})
    if err != nil { t.Fatalf("new: %v", err) }
    if c.MinPeers() != DefaultMinPeers { t.Fatalf("default min peers = %d", c.MinPeers()) }
}
