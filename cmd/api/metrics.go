package main

import (
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "tsboost_http_requests_total",
        Help: "HTTP requests by route and status code.",
    }, []string{"route", "code"})

    httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "tsboost_http_request_duration_seconds",
        Help:    "HTTP request latency by route.",
        Buckets: prometheus.DefBuckets,
    }, []string{"route"})

    predictions = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "tsboost_predictions_total",
        Help: "Scored rows by endpoint.",
    }, []string{"endpoint"})

    skippedTrees = promauto.NewCounter(prometheus.CounterOpts{
        Name: "tsboost_skipped_trees_total",
        Help: "Trees that contributed zero because a row was shorter than a split feature index.",
    })

    modelTrees = promauto.NewGauge(prometheus.GaugeOpts{
        Name: "tsboost_model_trees",
        Help: "Trees in the served model.",
    })
)

func metricsMiddleware(c *gin.Context) {
    start := time.Now()
    c.Next()
    route := c.FullPath()
    if route == "" { route = "unmatched" }
    httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
    httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
