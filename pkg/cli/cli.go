package cli

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"

    "github.com/amirimatin/go-peercheck/pkg/bootstrap"
    "github.com/amirimatin/go-peercheck/pkg/internal/logutil"
)

// AddAll attaches the peercheck subcommands (check/resolve) to root.
func AddAll(root *cobra.Command) {
    root.AddCommand(NewCheckCmd())
    root.AddCommand(NewResolveCmd())
}

// NewRootCmd returns the peercheck root command. Like "check", it takes the
// address list and an optional retry count as positional arguments, so
// `peercheck "[ip1,ip2]" 3` works as a drop-in pipeline step.
func NewRootCmd() *cobra.Command {
    root := NewCheckCmd()
    root.Use = "peercheck <addresses> [retries]"
    root.Short = "Gate a deployment on every node reporting enough peers"
    root.SilenceUsage = true
    root.SilenceErrors = true
    AddAll(root)
    return root
}

type checkFlags struct {
    discoveryKind, filePath, fileEnv     string
    metricsFile, pushGateway, pushJob    string
    logJSON, trace                       bool
}

// NewCheckCmd returns the "check" command that runs the peer check.
func NewCheckCmd() *cobra.Command {
    var f checkFlags
    cmd := &cobra.Command{
        Use:   "check <addresses> [retries]",
        Short: "Check that each node reports at least 3 peers, retrying once per second",
        Long: `Queries cfx_getPeers on http://<address>:30010 for every address, in order.
A node passes once it reports at least 3 peers. Each node gets 1+retries
attempts with a 1s pause between them; the first node that never passes
fails the run and the remaining nodes are not checked.

Addresses may be given as "[ip1,ip2]", "ip1, ip2" or "ip1 ip2". The retry
count defaults to 3. Set DEBUG=1 for per-attempt and RPC timing lines.`,
        Args: cobra.RangeArgs(0, 2),
        RunE: func(cmd *cobra.Command, args []string) error {
            if f.logJSON { logutil.SetJSON(true) }
            log := logutil.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), logutil.DebugFromEnv())
            cfg := bootstrap.Config{
                Retries:       bootstrap.DefaultRetries,
                DiscoveryKind: f.discoveryKind,
                FilePath:      f.filePath,
                FileEnv:       f.fileEnv,
                Logger:        log,
                Stderr:        cmd.ErrOrStderr(),
                Trace:         f.trace,
                MetricsFile:   f.metricsFile,
                PushGateway:   f.pushGateway,
                PushJob:       f.pushJob,
            }
            if len(args) > 0 { cfg.Addresses = args[0] }
            if len(args) > 1 && args[1] != "" { cfg.Retries = args[1] }

            ctx, cancel := signalContext(cmd.Context())
            defer cancel()
            if _, err := bootstrap.Run(ctx, cfg); err != nil {
                log.Errorf("%v", err)
                return &ExitError{Code: 1, Err: err}
            }
            return nil
        },
    }
    // "-5" after the address list is a retry count, not a flag.
    cmd.Flags().SetInterspersed(false)
    cmd.Flags().StringVar(&f.discoveryKind, "discovery", "static", "address source: static (positional list)|dns (resolve names)|file")
    cmd.Flags().StringVar(&f.filePath, "file", "", "path or glob to a file with addresses (discovery=file)")
    cmd.Flags().StringVar(&f.fileEnv, "file-env", "", "env var holding the address list, overrides --file (discovery=file)")
    cmd.Flags().BoolVar(&f.logJSON, "log-json", false, "emit log lines as JSON objects")
    cmd.Flags().BoolVar(&f.trace, "trace", false, "export OpenTelemetry spans to stderr")
    cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file (node_exporter textfile collector)")
    cmd.Flags().StringVar(&f.pushGateway, "pushgateway", "", "push Prometheus metrics to this Pushgateway URL")
    cmd.Flags().StringVar(&f.pushJob, "push-job", "peercheck", "Pushgateway job name")
    return cmd
}

// NewResolveCmd returns the "resolve" command which prints the addresses a
// check would contact, one per line, without contacting them.
func NewResolveCmd() *cobra.Command {
    var discoveryKind, filePath, fileEnv string
    cmd := &cobra.Command{
        Use:   "resolve [addresses]",
        Short: "Print the parsed address list",
        Args:  cobra.MaximumNArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg := bootstrap.Config{DiscoveryKind: discoveryKind, FilePath: filePath, FileEnv: fileEnv}
            if len(args) > 0 { cfg.Addresses = args[0] }
            addrs, err := bootstrap.Resolve(cmd.Context(), cfg)
            if err != nil { return fmt.Errorf("resolve: %w", err) }
            for _, a := range addrs {
                fmt.Fprintln(cmd.OutOrStdout(), a)
            }
            return nil
        },
    }
    cmd.Flags().StringVar(&discoveryKind, "discovery", "static", "address source: static|dns|file")
    cmd.Flags().StringVar(&filePath, "file", "", "path or glob to a file with addresses (discovery=file)")
    cmd.Flags().StringVar(&fileEnv, "file-env", "", "env var holding the address list (discovery=file)")
    return cmd
}

// ExitError carries the process exit code for a failed command. The error
// has already been logged when it is returned.
type ExitError struct {
    Code int
    Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
    if parent == nil { parent = context.Background() }
    return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
