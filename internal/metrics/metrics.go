// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPLatency is observed by the request metrics middleware.
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quillpress_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// PostViews counts successful single-post reads.
	PostViews = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quillpress_post_views_total",
		Help: "Total single-post reads.",
	})

	// ViewCountSaveFailures counts view increments that could not be persisted.
	ViewCountSaveFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quillpress_view_count_save_failures_total",
		Help: "View count increments that failed to persist.",
	})

	// CommentsAdded counts comments appended to posts.
	CommentsAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quillpress_comments_added_total",
		Help: "Total comments added.",
	})

	// PostsWritten counts post mutations by operation.
	PostsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quillpress_posts_written_total",
		Help: "Post mutations by operation.",
	}, []string{"op"}) // create|update|delete

	// AuthFailures counts rejected logins and tokens by reason.
	AuthFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quillpress_auth_failures_total",
		Help: "Rejected authentication attempts.",
	}, []string{"reason"})

	// Registry is the registry served on /metrics.
	Registry = prometheus.NewRegistry()

	registerOnce sync.Once
)

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			HTTPLatency,
			PostViews,
			ViewCountSaveFailures,
			CommentsAdded,
			PostsWritten,
			AuthFailures,
		)
	})
}

// Handler serves the collected metrics in the Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
