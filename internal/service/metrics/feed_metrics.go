package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    FeedClients = prometheus.NewGauge(
        prometheus.GaugeOpts{
            Namespace: "macrotilt",
            Subsystem: "feed",
            Name:      "clients",
            Help:      "Connected live signal feed clients",
        },
    )

    FeedPushes = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "macrotilt",
            Subsystem: "feed",
            Name:      "pushes_total",
            Help:      "Recommendations pushed to feed clients",
        },
        []string{"ticker"},
    )

    FeedErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "macrotilt",
            Subsystem: "feed",
            Name:      "errors_total",
            Help:      "Feed failures by stage",
        },
        []string{"stage"},
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(FeedClients, FeedPushes, FeedErrors)
    })
}
