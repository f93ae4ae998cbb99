// Package metrics provides Prometheus collectors for match execution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ipd"

// Collector gathers match metrics. A nil *Collector records nothing.
type Collector struct {
	matches       *prometheus.CounterVec
	rounds        prometheus.Counter
	noiseFlips    prometheus.Counter
	cacheLookups  *prometheus.CounterVec
	matchDuration prometheus.Histogram
}

// NewCollector registers the match collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		matches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Matches completed, by whether they were played or replayed from the cache",
			},
			[]string{"source"},
		),
		rounds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds played",
		}),
		noiseFlips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_flips_total",
			Help:      "Actions changed by noise",
		}),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Deterministic cache lookups, by result",
			},
			[]string{"result"},
		),
		matchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Wall time of Match.Play",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
}

// RecordMatch records a completed match.
func (c *Collector) RecordMatch(cached bool, latency time.Duration) {
	if c == nil {
		return
	}
	source := "played"
	if cached {
		source = "cache"
	}
	c.matches.WithLabelValues(source).Inc()
	c.matchDuration.Observe(latency.Seconds())
}

// RecordRound records one round and the number of actions noise changed in it.
func (c *Collector) RecordRound(flips int) {
	if c == nil {
		return
	}
	c.rounds.Inc()
	if flips > 0 {
		c.noiseFlips.Add(float64(flips))
	}
}

// RecordCacheLookup records a cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
