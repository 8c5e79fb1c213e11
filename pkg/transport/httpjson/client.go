package httpjson

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net"
    "net/http"
    "strconv"
    "sync/atomic"
    "time"

    "go.opentelemetry.io/otel/attribute"

    "github.com/amirimatin/go-peercheck/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-peercheck/pkg/observability/metrics"
    "github.com/amirimatin/go-peercheck/pkg/observability/tracing"
    "github.com/amirimatin/go-peercheck/pkg/transport"
)

// DefaultTimeout bounds a single call when the caller does not set one.
const DefaultTimeout = time.Second

// Client is a thin JSON-RPC 2.0 over HTTP client for node RPC endpoints.
// Each call opens its own connection and reads the response fully.
type Client struct {
    httpc   *http.Client
    timeout time.Duration
    port    int
    ids     atomic.Uint64
    log     *logutil.Logger
}

// NewClient constructs a new Client with the given per-call timeout.
func NewClient(timeout time.Duration) *Client {
    if timeout <= 0 { timeout = DefaultTimeout }
    tr := &http.Transport{Proxy: http.ProxyFromEnvironment, DisableKeepAlives: true}
    c := &Client{httpc: &http.Client{Transport: tr}, timeout: timeout, port: transport.DefaultPort}
    c.ids.Store(uint64(time.Now().UnixMilli()))
    return c
}

// UsePort overrides the RPC port nodes are dialed on.
func (c *Client) UsePort(port int) *Client {
    if port > 0 { c.port = port }
    return c
}

// UseLogger enables RPC timing lines at debug level.
func (c *Client) UseLogger(l *logutil.Logger) *Client { c.log = l; return c }

// URL returns the endpoint used for addr.
func (c *Client) URL(addr string) string {
    return "http://" + net.JoinHostPort(addr, strconv.Itoa(c.port))
}

// PeerCount calls cfx_getPeers on addr and returns the length of the result
// list. A missing or non-list result counts as zero peers.
func (c *Client) PeerCount(ctx context.Context, addr string) (int, error) {
    raw, err := c.Call(ctx, addr, transport.MethodGetPeers)
    if err != nil { return 0, err }
    return countResult(raw), nil
}

// Call performs one JSON-RPC request and returns the raw result.
func (c *Client) Call(ctx context.Context, addr, method string, params ...any) (json.RawMessage, error) {
    url := c.URL(addr)
    if params == nil { params = []any{} }
    ctx, end := tracing.StartSpan(ctx, "rpc."+method, attribute.String("rpc.url", url))
    start := time.Now()
    c.log.Debugf("RPC start: url=%s method=%s timeoutMs=%d", url, method, c.timeout.Milliseconds())

    res, err := c.call(ctx, url, method, params)

    cost := time.Since(start)
    outcome := "ok"
    var rerr *Error
    if errors.As(err, &rerr) { outcome = rerr.Kind.String() }
    obsmetrics.RPCDuration.WithLabelValues(method, outcome).Observe(cost.Seconds())
    if err == nil {
        c.log.Debugf("RPC ok: url=%s method=%s costMs=%d", url, method, cost.Milliseconds())
    }
    c.log.Debugf("RPC end: url=%s method=%s costMs=%d", url, method, cost.Milliseconds())
    end(err)
    return res, err
}

func (c *Client) call(ctx context.Context, url, method string, params []any) (json.RawMessage, error) {
    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()

    body, err := json.Marshal(transport.Request{JSONRPC: "2.0", ID: c.ids.Add(1), Method: method, Params: params})
    if err != nil { return nil, err }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
    if err != nil { return nil, &Error{Kind: KindTransport, URL: url, Method: method, Err: err} }
    req.Header.Set("Content-Type", "application/json")

    resp, err := c.httpc.Do(req)
    if err != nil { return nil, classify(ctx, url, method, err) }
    defer resp.Body.Close()
    b, err := io.ReadAll(resp.Body)
    if err != nil { return nil, classify(ctx, url, method, err) }

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return nil, &Error{
            Kind:    KindHTTPStatus,
            URL:     url,
            Method:  method,
            Status:  resp.StatusCode,
            Message: fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
        }
    }

    if !json.Valid(b) {
        return nil, &Error{Kind: KindDecode, URL: url, Method: method, Message: "invalid JSON response"}
    }
    out, err := transport.DecodeResponse(b)
    if err != nil {
        // valid JSON but not an envelope object: no result
        return nil, nil
    }
    if present(out.Error) {
        return nil, &Error{Kind: KindProtocol, URL: url, Method: method, Message: errorMessage(out.Error)}
    }
    return out.Result, nil
}

func classify(ctx context.Context, url, method string, err error) error {
    var ne net.Error
    if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
        return &Error{Kind: KindTimeout, URL: url, Method: method, Message: ErrTimeout.Error(), Err: err}
    }
    return &Error{Kind: KindTransport, URL: url, Method: method, Err: err}
}

// present reports whether raw is set to a truthy JSON value: absent, null,
// false, "" and any zero number count as unset.
func present(raw json.RawMessage) bool {
    switch string(bytes.TrimSpace(raw)) {
    case "", "null", "false", `""`:
        return false
    }
    var f float64
    if err := json.Unmarshal(raw, &f); err == nil && f == 0 { return false }
    return true
}

// errorMessage prefers error.message and falls back to the serialized object.
func errorMessage(raw json.RawMessage) string {
    var obj struct{ Message string `json:"message"` }
    if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
        return obj.Message
    }
    var buf bytes.Buffer
    if err := json.Compact(&buf, raw); err == nil { return buf.String() }
    return string(raw)
}

func countResult(raw json.RawMessage) int {
    if !present(raw) { return 0 }
    var list []json.RawMessage
    if err := json.Unmarshal(raw, &list); err != nil { return 0 }
    return len(list)
}

var _ transport.PeerCounter = (*Client)(nil)
