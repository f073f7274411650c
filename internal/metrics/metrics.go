//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics exposes Prometheus collectors for store operations,
// HTTP requests and live valuation animators.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

const namespace = "brokeradmin"

// Collector owns a private registry and the application's metrics.
type Collector struct {
	registry *prometheus.Registry

	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	activeAnimators prometheus.Gauge
	resamples       prometheus.Counter
	locks           prometheus.Counter
}

// NewCollector creates a Collector with Go runtime and process collectors
// registered alongside the application metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		storeOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Document store operations by collection, operation and outcome",
		}, []string{"collection", "operation", "status"}),
		storeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		activeAnimators: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "valuation_active_animators",
			Help:      "Valuation animators currently resampling",
		}),
		resamples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuation_resamples_total",
			Help:      "Displayed valuation resamples",
		}),
		locks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuation_locks_total",
			Help:      "Valuations that reached their settlement instant",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveStore records one store operation.
func (c *Collector) ObserveStore(collection, operation string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.storeOps.WithLabelValues(collection, operation, status).Inc()
	c.storeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

var _ valuation.Observer = (*Collector)(nil)

// Started implements valuation.Observer.
func (c *Collector) Started(string) { c.activeAnimators.Inc() }

// Stopped implements valuation.Observer.
func (c *Collector) Stopped(string) { c.activeAnimators.Dec() }

// Resampled implements valuation.Observer.
func (c *Collector) Resampled(string) { c.resamples.Inc() }

// Locked implements valuation.Observer.
func (c *Collector) Locked(string) { c.locks.Inc() }
