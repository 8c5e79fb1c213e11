package bootstrap

import (
    "context"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/amirimatin/go-peercheck/pkg/checker"
    "github.com/amirimatin/go-peercheck/pkg/discovery"
    dDNS "github.com/amirimatin/go-peercheck/pkg/discovery/dns"
    dFile "github.com/amirimatin/go-peercheck/pkg/discovery/file"
    dStatic "github.com/amirimatin/go-peercheck/pkg/discovery/static"
    "github.com/amirimatin/go-peercheck/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-peercheck/pkg/observability/metrics"
    "github.com/amirimatin/go-peercheck/pkg/observability/tracing"
    httpjson "github.com/amirimatin/go-peercheck/pkg/transport/httpjson"
)

// DefaultRetries is used when no retry count is given.
const DefaultRetries = "3"

// Config defines the inputs of one check run. The CLI fills it from its
// arguments and flags; library users fill it directly and call Run.
type Config struct {
    // Addresses is the raw address list ("[ip1,ip2]", "ip1, ip2", "ip1 ip2").
    // With DiscoveryKind=dns it holds the names to resolve.
    Addresses string
    // Retries is the raw retry count; empty means DefaultRetries.
    Retries string

    // Discovery settings
    DiscoveryKind string // "static" (default), "dns" or "file"
    FilePath      string // used when kind=file
    FileEnv       string // used when kind=file
    DNSResolver   dDNS.Resolver // optional, used when kind=dns

    // Output. Logger wins over the writers when set.
    Logger  *logutil.Logger
    Stdout  io.Writer
    Stderr  io.Writer
    Debug   bool

    // Observability (optional)
    Trace       bool
    TraceOut    io.Writer // defaults to Stderr
    MetricsFile string    // node_exporter textfile path
    PushGateway string    // Pushgateway base URL
    PushJob     string

    // Fixed run parameters; zero keeps the defaults (port 30010, 1s timeout,
    // 1s delay, 3 peers). Not exposed on the command line.
    Port        int
    CallTimeout time.Duration
    RetryDelay  time.Duration
    MinPeers    int
    Clock       checker.Clock
}

func (cfg Config) logger() *logutil.Logger {
    if cfg.Logger != nil { return cfg.Logger }
    return logutil.New(cfg.Stdout, cfg.Stderr, cfg.Debug)
}

func (cfg Config) retriesLabel() string {
    if cfg.Retries == "" { return DefaultRetries }
    return cfg.Retries
}

// BuildDiscovery selects the address source for cfg.
func BuildDiscovery(cfg Config) (discovery.Discovery, error) {
    switch strings.ToLower(strings.TrimSpace(cfg.DiscoveryKind)) {
    case "", "static":
        return dStatic.New(dStatic.Parse(cfg.Addresses)...), nil
    case "dns":
        opts := dDNS.Options{Names: dStatic.Parse(cfg.Addresses)}
        if cfg.DNSResolver != nil { opts.Resolver = cfg.DNSResolver }
        return dDNS.New(opts), nil
    case "file":
        return dFile.New(dFile.Options{Path: cfg.FilePath, Env: cfg.FileEnv}), nil
    default:
        return nil, &checker.ConfigError{Reason: fmt.Sprintf("unknown discovery kind %q (static|dns|file)", cfg.DiscoveryKind)}
    }
}

// Resolve returns the addresses a run with cfg would check.
func Resolve(ctx context.Context, cfg Config) ([]string, error) {
    disc, err := BuildDiscovery(cfg)
    if err != nil { return nil, err }
    addrs, err := disc.Addresses(ctx)
    if err != nil { return nil, &checker.ConfigError{Reason: "address discovery failed", Err: err} }
    return addrs, nil
}

// Build assembles the RPC client and Checker for cfg without running it.
func Build(cfg Config) (*checker.Checker, error) {
    log := cfg.logger()
    cli := httpjson.NewClient(cfg.CallTimeout).UsePort(cfg.Port).UseLogger(log)
    return checker.New(checker.Options{
        Client:      cli,
        MinPeers:    cfg.MinPeers,
        CallTimeout: cfg.CallTimeout,
        RetryDelay:  cfg.RetryDelay,
        Clock:       cfg.Clock,
        OnEvent:     newEventLogger(log).handle,
    })
}

// Run resolves the addresses, checks them in order and returns the report.
// A nil error means every node reached the minimum peer count. Run metrics
// are stamped and flushed whatever the outcome, including configuration
// failures before any node is contacted.
func Run(ctx context.Context, cfg Config) (rep *checker.Report, err error) {
    log := cfg.logger()
    cfg.Logger = log
    obsmetrics.Register()
    defer func() { finishRun(cfg, log, err) }()

    traceOut := cfg.TraceOut
    if traceOut == nil { traceOut = cfg.Stderr }
    shutdown, terr := tracing.Setup(cfg.Trace, traceOut)
    if terr != nil {
        log.Warnf("tracing setup error: %v", terr)
    } else {
        defer func() { _ = shutdown(context.Background()) }()
    }

    addrs, rerr := Resolve(ctx, cfg)
    log.Infof("parsed addresses: count=%d", len(addrs))

    chk, err := Build(cfg)
    if err != nil { return nil, err }
    debug := 0
    if log.DebugEnabled() { debug = 1 }
    log.Infof("start: addresses=%s retries=%s minPeers=%d DEBUG=%d", cfg.Addresses, cfg.retriesLabel(), chk.MinPeers(), debug)
    if rerr != nil { return nil, rerr }

    retries := checker.NormalizeRetries(cfg.retriesLabel())
    rep, err = chk.Run(ctx, addrs, retries)
    if err != nil { return rep, err }
    log.Infof("all nodes passed")
    return rep, nil
}

// finishRun records the run outcome and writes it to the configured sinks.
func finishRun(cfg Config, log *logutil.Logger, err error) {
    obsmetrics.RunTimestamp.SetToCurrentTime()
    if err == nil { obsmetrics.RunSuccess.Set(1) } else { obsmetrics.RunSuccess.Set(0) }
    flushMetrics(cfg, log)
}

func flushMetrics(cfg Config, log *logutil.Logger) {
    if cfg.MetricsFile != "" {
        if err := obsmetrics.WriteTextfile(cfg.MetricsFile); err != nil { log.Warnf("%v", err) }
    }
    if cfg.PushGateway != "" {
        if err := obsmetrics.Push(cfg.PushGateway, cfg.PushJob); err != nil { log.Warnf("%v", err) }
    }
}
