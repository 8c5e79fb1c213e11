package main

import (
    "context"
    "flag"
    "fmt"
    "log"
    "os"
    "os/signal"
    "sync/atomic"
    "syscall"
    "time"

    httpjson "github.com/amirimatin/go-peercheck/pkg/transport/httpjson"
)

// peernode is a stand-in node for trying peercheck locally: it answers
// cfx_getPeers with a peer list that grows by one every -grow interval until
// it reaches -peers.
func main() {
    var (
        bind  = flag.String("bind", "127.0.0.1:30010", "bind host:port")
        peers = flag.Int("peers", 3, "peer count to report once warmed up")
        start = flag.Int("start", 0, "peer count reported at startup")
        grow  = flag.Duration("grow", time.Second, "interval between peer count increments (0 = report -peers immediately)")
    )
    flag.Parse()

    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer cancel()

    var current atomic.Int64
    current.Store(int64(*start))
    if *grow <= 0 { current.Store(int64(*peers)) }
    go func() {
        if *grow <= 0 { return }
        t := time.NewTicker(*grow)
        defer t.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-t.C:
                if current.Load() < int64(*peers) { current.Add(1) }
            }
        }
    }()

    srv := httpjson.NewServer(*bind, nil).HandlePeers(func() int { return int(current.Load()) })
    if err := srv.Start(ctx); err != nil { log.Fatal(err) }
    fmt.Printf("peernode listening at %s (peers %d -> %d). Press Ctrl+C to exit.\n", srv.Addr(), *start, *peers)
    <-ctx.Done()
}
