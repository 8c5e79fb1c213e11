package httpjson

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net"
    "net/http"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/amirimatin/go-peercheck/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-peercheck/pkg/observability/metrics"
    "github.com/amirimatin/go-peercheck/pkg/observability/tracing"
    "github.com/amirimatin/go-peercheck/pkg/transport"
)

// HandlerFunc serves one JSON-RPC method. Returning a *transport.ErrorObject
// sends that error verbatim; any other error becomes an internal error.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server is a minimal JSON-RPC 2.0 over HTTP server. It stands in for a node
// in tests and local demos, and also exposes /healthz and /metrics.
type Server struct {
    bind     string
    srvMu    sync.Mutex
    srv      *http.Server
    lis      net.Listener
    logger   *logutil.Logger
    mu       sync.RWMutex
    handlers map[string]HandlerFunc
}

// NewServer binds to the given TCP address (e.g., ":30010" or "127.0.0.1:0").
func NewServer(bind string, logger *logutil.Logger) *Server {
    return &Server{bind: bind, logger: logger, handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for method, replacing any previous handler.
func (s *Server) Handle(method string, fn HandlerFunc) *Server {
    s.mu.Lock()
    s.handlers[method] = fn
    s.mu.Unlock()
    return s
}

// HandlePeers answers cfx_getPeers with a list of n placeholder peers.
// peers is called on every request so the count may change over time.
func (s *Server) HandlePeers(peers func() int) *Server {
    return s.Handle(transport.MethodGetPeers, func(ctx context.Context, _ json.RawMessage) (any, error) {
        n := peers()
        out := make([]map[string]string, 0, n)
        for i := 0; i < n; i++ {
            out = append(out, map[string]string{"nodeId": fmt.Sprintf("peer-%d", i)})
        }
        return out, nil
    })
}

// Start listens and serves until ctx is canceled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
    lis, err := net.Listen("tcp", s.bind)
    if err != nil { return err }
    s.lis = lis

    mux := http.NewServeMux()
    mux.HandleFunc("/", s.serveRPC)
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    // Prometheus metrics
    obsmetrics.Register()
    mux.Handle("/metrics", promhttp.HandlerFor(obsmetrics.Registry, promhttp.HandlerOpts{}))

    srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
    s.srvMu.Lock()
    s.srv = srv
    s.srvMu.Unlock()
    go func() {
        <-ctx.Done()
        _ = s.Stop(context.Background())
    }()
    go func() {
        if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
            s.logger.Errorf("rpc server error: %v", err)
        }
    }()
    return nil
}

// Addr returns the bound address, which differs from bind for port 0.
func (s *Server) Addr() string {
    if s.lis != nil { return s.lis.Addr().String() }
    return s.bind
}

// Stop shuts the server down gracefully, waiting at most 2s. It is safe to
// call more than once and concurrently with context cancellation.
func (s *Server) Stop(ctx context.Context) error {
    s.srvMu.Lock()
    srv := s.srv
    s.srv = nil
    s.srvMu.Unlock()
    if srv == nil { return nil }
    c, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    return srv.Shutdown(c)
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    var req struct {
        ID     json.RawMessage `json:"id"`
        Method string          `json:"method"`
        Params json.RawMessage `json:"params"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeRPC(w, nil, nil, &transport.ErrorObject{Code: transport.CodeParseError, Message: fmt.Sprintf("parse error: %v", err)})
        return
    }
    s.mu.RLock()
    fn, ok := s.handlers[req.Method]
    s.mu.RUnlock()
    if !ok {
        writeRPC(w, req.ID, nil, &transport.ErrorObject{Code: transport.CodeMethodNotFound, Message: "the method " + req.Method + " does not exist/is not available"})
        return
    }
    ctx, end := tracing.StartSpan(r.Context(), "http.rpc."+req.Method)
    res, err := fn(ctx, req.Params)
    end(err)
    s.logger.Debugf("rpc served: method=%s remote=%s err=%v", req.Method, r.RemoteAddr, err)
    if err != nil {
        var eo *transport.ErrorObject
        if !errors.As(err, &eo) { eo = &transport.ErrorObject{Code: transport.CodeInternalError, Message: err.Error()} }
        writeRPC(w, req.ID, nil, eo)
        return
    }
    writeRPC(w, req.ID, res, nil)
}

func writeRPC(w http.ResponseWriter, id json.RawMessage, result any, rpcErr *transport.ErrorObject) {
    if len(id) == 0 { id = json.RawMessage("null") }
    resp := map[string]any{"jsonrpc": "2.0", "id": id}
    if rpcErr != nil { resp["error"] = rpcErr } else { resp["result"] = result }
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(resp)
}
