// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/zerr"
)

const namespace = "csspost"

// Prometheus counts post-processing outcomes per processor scope on a private registry.
type Prometheus struct {
	registry  *prometheus.Registry
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Prometheus {
	labels := []string{"scope"}
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_processed_total",
			Help:      "Assets transformed by the plugin chain.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_process_seconds",
			Help:      "Time spent transforming one asset.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, labels),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Assets restored from the cache.",
		}, labels),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Assets not found in the cache.",
		}, labels),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_skipped_total",
			Help:      "Selected assets skipped because they had no content.",
		}, labels),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_failed_total",
			Help:      "Assets the plugin chain failed on.",
		}, labels),
	}
	p.registry.MustRegister(p.processed, p.duration, p.hits, p.misses, p.skipped, p.failed)
	return p
}

// AssetProcessed counts a transformed asset and observes its duration.
func (p *Prometheus) AssetProcessed(scope string, seconds float64) {
	p.processed.WithLabelValues(scope).Inc()
	p.duration.WithLabelValues(scope).Observe(seconds)
}

// CacheHit counts an asset restored from cache.
func (p *Prometheus) CacheHit(scope string) {
	p.hits.WithLabelValues(scope).Inc()
}

// CacheMiss counts an asset not found in cache.
func (p *Prometheus) CacheMiss(scope string) {
	p.misses.WithLabelValues(scope).Inc()
}

// AssetSkipped counts an asset skipped for having no content.
func (p *Prometheus) AssetSkipped(scope string) {
	p.skipped.WithLabelValues(scope).Inc()
}

// AssetFailed counts an asset the plugin chain failed on.
func (p *Prometheus) AssetFailed(scope string) {
	p.failed.WithLabelValues(scope).Inc()
}

// Registry returns the registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// WriteFile writes the current values in the node-exporter textfile format.
func (p *Prometheus) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	return nil
}

// Serve exposes the collectors on addr at /metrics until ctx is canceled.
func (p *Prometheus) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return zerr.With(zerr.Wrap(err, "failed to serve metrics"), "addr", addr)
	}
	return nil
}
