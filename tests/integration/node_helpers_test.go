//go:build integration

package integration

import (
    "context"
    "fmt"
    "net"
    "sync/atomic"
    "testing"

    httpjson "github.com/amirimatin/go-peercheck/pkg/transport/httpjson"
)

func freePort(t *testing.T) int {
    t.Helper()
    lis, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatalf("listen: %v", err) }
    defer lis.Close()
    return lis.Addr().(*net.TCPAddr).Port
}

// startNode serves cfx_getPeers on ip:port. peers receives the 1-based call number.
func startNode(t *testing.T, ctx context.Context, ip string, port int, hits *atomic.Int64, peers func(call int64) int) {
    t.Helper()
    nctx, cancel := context.WithCancel(ctx)
    t.Cleanup(cancel)
    srv := httpjson.NewServer(net.JoinHostPort(ip, fmt.Sprint(port)), nil).HandlePeers(func() int {
        return peers(hits.Add(1))
    })
    if err := srv.Start(nctx); err != nil { t.Skipf("cannot bind %s:%d: %v", ip, port, err) }
}
