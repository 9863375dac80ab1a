// Package metrics exposes catalog and command metrics for Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalogbot"

var (
	// Queries counts evaluated queries by kind and outcome (ok, empty, user_error, error).
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of catalog queries",
		},
		[]string{"kind", "outcome"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Catalog query evaluation time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"kind"},
	)

	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of handled interactions",
		},
		[]string{"command", "status"},
	)

	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Total number of catalog reloads",
		},
		[]string{"status"},
	)

	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Catalog reload time in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	Entities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Number of loaded entities per kind and server",
		},
		[]string{"kind", "server"},
	)

	Sessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_sessions",
			Help:      "Number of live interactive views",
		},
	)
)

// ObserveQuery records one query evaluation.
func ObserveQuery(kind, outcome string, took time.Duration) {
	Queries.WithLabelValues(kind, outcome).Inc()
	QueryDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			slog.Error("Failed to stop metrics server",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}()

	slog.Info("Metrics server listening",
		slog.String("type", "sys"),
		slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
