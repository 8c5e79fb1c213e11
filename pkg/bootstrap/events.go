package bootstrap

import (
    "errors"
    "strings"

    "github.com/amirimatin/go-peercheck/pkg/checker"
    "github.com/amirimatin/go-peercheck/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-peercheck/pkg/observability/metrics"
    "github.com/amirimatin/go-peercheck/pkg/transport"
)

// eventLogger turns checker events into log lines and metric updates.
type eventLogger struct {
    log *logutil.Logger
}

func newEventLogger(l *logutil.Logger) *eventLogger { return &eventLogger{log: l} }

func (e *eventLogger) handle(ev checker.Event) {
    switch ev.Type {
    case checker.EventRunStart:
        e.log.Infof("parsed params: addresses=%s maxRetries=%d intervalMs=%d rpcTimeoutMs=%d",
            strings.Join(ev.Addresses, ","), ev.MaxAttempts-1, ev.Delay.Milliseconds(), ev.CallTimeout.Milliseconds())
    case checker.EventNodeStart:
        e.log.Infof("checking: ip=%s", ev.Address)
    case checker.EventAttempt:
        e.log.Debugf("request: ip=%s attempt=%d/%d method=%s", ev.Address, ev.Attempt, ev.MaxAttempts, transport.MethodGetPeers)
    case checker.EventPassed:
        obsmetrics.Attempts.WithLabelValues(ev.Address, "ok").Inc()
        obsmetrics.Peers.WithLabelValues(ev.Address).Set(float64(ev.Peers))
        obsmetrics.NodeUp.WithLabelValues(ev.Address).Set(1)
        e.log.Infof("passed: ip=%s peers=%d (>=%d)", ev.Address, ev.Peers, ev.MinPeers)
    case checker.EventBelowThreshold:
        obsmetrics.Attempts.WithLabelValues(ev.Address, "below_threshold").Inc()
        obsmetrics.Peers.WithLabelValues(ev.Address).Set(float64(ev.Peers))
        e.log.Infof("below threshold: ip=%s peers=%d (<%d) attempt=%d/%d", ev.Address, ev.Peers, ev.MinPeers, ev.Attempt, ev.MaxAttempts)
    case checker.EventAttemptFailed:
        obsmetrics.Attempts.WithLabelValues(ev.Address, "error").Inc()
        e.log.Infof("failed: ip=%s attempt=%d/%d err=%v", ev.Address, ev.Attempt, ev.MaxAttempts, ev.Err)
    case checker.EventRetryWait:
        e.log.Debugf("waiting to retry: ip=%s sleepMs=%d nextAttempt=%d/%d", ev.Address, ev.Delay.Milliseconds(), ev.Attempt, ev.MaxAttempts)
    case checker.EventNodeFailed:
        obsmetrics.NodeUp.WithLabelValues(ev.Address).Set(0)
        detail := ""
        var ex *checker.ExhaustedError
        if errors.As(ev.Err, &ex) && ex.LastErr != nil { detail = ", last error: " + ex.LastErr.Error() }
        e.log.Errorf("node check failed: ip=%s minPeers=%d%s", ev.Address, ev.MinPeers, detail)
    case checker.EventNodeDone:
        e.log.Infof("done: ip=%s", ev.Address)
    }
}
