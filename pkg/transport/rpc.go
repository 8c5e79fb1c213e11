package transport

import (
    "context"
    "encoding/json"
)

// DefaultPort is the JSON-RPC port every node is dialed on.
const DefaultPort = 30010

// MethodGetPeers returns the list of peers a node is connected to.
const MethodGetPeers = "cfx_getPeers"

// PeerCounter fetches the number of peers a node reports.
type PeerCounter interface {
    PeerCount(ctx context.Context, addr string) (int, error)
}

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
    JSONRPC string `json:"jsonrpc"`
    ID      uint64 `json:"id"`
    Method  string `json:"method"`
    Params  []any  `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope. Result is kept raw so callers
// decide how to interpret it; Error is raw so an error object without a
// message can still be reported verbatim.
type Response struct {
    JSONRPC string          `json:"jsonrpc,omitempty"`
    ID      json.RawMessage `json:"id,omitempty"`
    Result  json.RawMessage `json:"result,omitempty"`
    Error   json.RawMessage `json:"error,omitempty"`
}

// DecodeResponse reads a response envelope. Member names must match exactly;
// "Result" or "ERROR" are unknown members, not the envelope fields.
func DecodeResponse(b []byte) (Response, error) {
    var m map[string]json.RawMessage
    if err := json.Unmarshal(b, &m); err != nil { return Response{}, err }
    var out Response
    if v, ok := m["jsonrpc"]; ok { _ = json.Unmarshal(v, &out.JSONRPC) }
    out.ID = m["id"]
    out.Result = m["result"]
    out.Error = m["error"]
    return out, nil
}

// Standard JSON-RPC 2.0 error codes.
const (
    CodeParseError     = -32700
    CodeMethodNotFound = -32601
    CodeInternalError  = -32603
)

// ErrorObject is the usual shape of a JSON-RPC error. Server handlers may
// return it as an error to control the code sent back.
type ErrorObject struct {
    Code    int             `json:"code"`
    Message string          `json:"message,omitempty"`
    Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string { return e.Message }
