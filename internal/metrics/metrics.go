// Package metrics exposes catalog activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.CatalogMetrics = (*Recorder)(nil)

const namespace = "datahub"

// Result label values.
const (
	resultOK       = "ok"
	resultError    = "error"
	resultBusy     = "busy"
	resultFallback = "fallback"
)

// Recorder owns a registry and the catalog collectors registered in it.
type Recorder struct {
	registry *prometheus.Registry

	listings         *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	loads            *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	records          *prometheus.GaugeVec
	dropped          prometheus.Gauge
	lastLoad         prometheus.Gauge
}

// NewRecorder creates a recorder with a private registry. Go runtime and
// process collectors are included so /metrics is useful on its own.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		listings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listings_total",
				Help:      "Listings served, by upstream source and provenance.",
			},
			[]string{"source", "provenance"},
		),
		upstreamFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_failures_total",
				Help:      "Upstream fetches that failed or returned nothing.",
			},
			[]string{"source"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Record set loads, by result.",
			},
			[]string{"result"},
		),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time taken to load and index the record set.",
			Buckets:   prometheus.DefBuckets,
		}),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Records in the current snapshot, labelled by provenance.",
			},
			[]string{"provenance"},
		),
		dropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_dropped",
			Help:      "Raw records rejected by normalisation in the last load.",
		}),
		lastLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last completed load.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.listings,
		r.upstreamFailures,
		r.loads,
		r.loadDuration,
		r.records,
		r.dropped,
		r.lastLoad,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveListing records one served listing.
func (r *Recorder) ObserveListing(source string, provenance domain.Provenance, upstreamErr error) {
	r.listings.WithLabelValues(source, provenance.String()).Inc()
	if upstreamErr != nil {
		r.upstreamFailures.WithLabelValues(source).Inc()
	}
}

// ObserveLoad records one completed load.
func (r *Recorder) ObserveLoad(snapshot *domain.Snapshot, elapsed time.Duration, err error) {
	switch {
	case errors.Is(err, domain.ErrRefreshInProgress):
		r.loads.WithLabelValues(resultBusy).Inc()
		return
	case err != nil:
		r.loads.WithLabelValues(resultError).Inc()
	case snapshot != nil && snapshot.Provenance == domain.ProvenanceFallback:
		r.loads.WithLabelValues(resultFallback).Inc()
	default:
		r.loads.WithLabelValues(resultOK).Inc()
	}

	r.loadDuration.Observe(elapsed.Seconds())

	if snapshot.IsEmpty() {
		return
	}
	r.records.Reset()
	r.records.WithLabelValues(snapshot.Provenance.String()).Set(float64(len(snapshot.Records)))
	r.dropped.Set(float64(snapshot.Dropped))
	r.lastLoad.Set(float64(snapshot.LoadedAt.Unix()))
}
