package metrics

import (
    "fmt"
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "peercheck"

var (
    once sync.Once

    // Registry holds every peercheck collector. It is separate from the
    // default registry so textfile and pushgateway output carry only check
    // results, not Go runtime metrics.
    Registry = prometheus.NewRegistry()

    Attempts = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: namespace,
        Name:      "attempts_total",
        Help:      "Total number of peer count attempts by outcome (ok, below_threshold, error)",
    }, []string{"address", "outcome"})

    Peers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
        Namespace: namespace,
        Name:      "node_peers",
        Help:      "Peer count reported by the node on the last successful call",
    }, []string{"address"})

    NodeUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
        Namespace: namespace,
        Name:      "node_passed",
        Help:      "1 if the node reached the minimum peer count, 0 if it exhausted its retries",
    }, []string{"address"})

    RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Namespace: namespace,
        Subsystem: "rpc",
        Name:      "duration_seconds",
        Help:      "Latency of JSON-RPC calls by method and outcome",
        Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
    }, []string{"method", "outcome"})

    RunSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: namespace,
        Name:      "last_run_success",
        Help:      "1 if the last run passed for every node, else 0",
    })

    RunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: namespace,
        Name:      "last_run_timestamp_seconds",
        Help:      "Unix time the last run finished",
    })
)

// Register registers metrics into Registry (idempotent).
func Register() {
    once.Do(func() {
        Registry.MustRegister(Attempts)
        Registry.MustRegister(Peers)
        Registry.MustRegister(NodeUp)
        Registry.MustRegister(RPCDuration)
        Registry.MustRegister(RunSuccess)
        Registry.MustRegister(RunTimestamp)
    })
}

// WriteTextfile writes Registry in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
    Register()
    if err := prometheus.WriteToTextfile(path, Registry); err != nil {
        return fmt.Errorf("metrics: write %s: %w", path, err)
    }
    return nil
}

// Push sends Registry to a Prometheus Pushgateway under the given job,
// replacing the previous group for that job.
func Push(url, job string) error {
    Register()
    if job == "" { job = namespace }
    if err := push.New(url, job).Gatherer(Registry).Push(); err != nil {
        return fmt.Errorf("metrics: push to %s: %w", url, err)
    }
    return nil
}
