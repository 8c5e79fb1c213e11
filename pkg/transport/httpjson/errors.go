package httpjson

import "errors"

// Kind classifies why a JSON-RPC call failed.
type Kind int

const (
    // KindTransport is a network-level failure (refused, reset, DNS, ...).
    KindTransport Kind = iota + 1
    // KindTimeout means the call did not finish within its deadline.
    KindTimeout
    // KindHTTPStatus is a non-2xx HTTP response.
    KindHTTPStatus
    // KindProtocol is a JSON-RPC error envelope returned by the node.
    KindProtocol
    // KindDecode is a response body that is not valid JSON.
    KindDecode
)

func (k Kind) String() string {
    switch k {
    case KindTransport:
        return "transport"
    case KindTimeout:
        return "timeout"
    case KindHTTPStatus:
        return "http_status"
    case KindProtocol:
        return "protocol"
    case KindDecode:
        return "decode"
    default:
        return "unknown"
    }
}

// ErrTimeout matches any *Error of KindTimeout via errors.Is.
var ErrTimeout = errors.New("request timed out")

// Error is returned by Client for every failed call.
type Error struct {
    Kind    Kind
    URL     string
    Method  string
    // Status is the HTTP status code for KindHTTPStatus, else 0.
    Status  int
    Message string
    Err     error
}

func (e *Error) Error() string {
    if e.Message != "" { return e.Message }
    if e.Err != nil { return e.Err.Error() }
    return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
    return target == ErrTimeout && e.Kind == KindTimeout
}
