package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newton",
		Name:      "renders_total",
		Help:      "Render requests by outcome (ok, bad_request, error).",
	}, []string{"status"})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "newton",
		Name:      "render_duration_seconds",
		Help:      "Time spent computing and encoding one image.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	})

	renderPixels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newton",
		Name:      "rendered_pixels_total",
		Help:      "Pixels computed by successful renders.",
	})

	compileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newton",
		Name:      "compile_cache_hits_total",
		Help:      "Expressions served from the compile cache.",
	})

	compileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newton",
		Name:      "compile_cache_misses_total",
		Help:      "Expressions compiled on demand.",
	})
)
