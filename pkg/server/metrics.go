package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/controller"
)

const namespace = "orrery"

// Metrics collects frame, command and asset statistics on its own registry.
// It is the controller.Observer of a served controller.
type Metrics struct {
	registry *prometheus.Registry

	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	entities      *prometheus.GaugeVec
	paused        prometheus.Gauge
	commands      *prometheus.CounterVec
	assets        *prometheus.CounterVec
	clients       prometheus.Gauge
	broadcasts    *prometheus.CounterVec
	limited       prometheus.Counter
}

// NewMetrics creates and registers every collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames stepped by the controller",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent stepping one frame",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Live entities by kind",
		}, []string{"kind"}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "1 while the simulation clock is paused",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands applied, by type and result",
		}, []string{"command", "result"}),
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_loads_total",
			Help:      "Finished asset loads, by kind and whether the fallback was used",
		}, []string{"kind", "fallback"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients",
			Help:      "Connected websocket renderers",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Frames offered to the hub, by outcome",
		}, []string{"outcome"}),
		limited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_rate_limited_total",
			Help:      "Commands rejected by the per-client rate limit",
		}),
	}

	m.registry.MustRegister(
		m.frames, m.frameDuration, m.entities, m.paused,
		m.commands, m.assets, m.clients, m.broadcasts, m.limited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFrame implements controller.Observer
func (m *Metrics) ObserveFrame(d time.Duration, f *types.Frame) {
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
	m.entities.WithLabelValues("planet").Set(float64(f.Counters.Planets))
	m.entities.WithLabelValues("moon").Set(float64(f.Counters.Moons))
	m.entities.WithLabelValues("comet").Set(float64(f.Counters.Comets))
	m.entities.WithLabelValues("model").Set(float64(f.Counters.Models))
	if f.Paused {
		m.paused.Set(1)
	} else {
		m.paused.Set(0)
	}
}

// ObserveCommand implements controller.Observer
func (m *Metrics) ObserveCommand(kind string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, controller.ErrUnknownCommand):
		// keep client-chosen names out of the label set
		kind, result = "unknown", "rejected"
	case err != nil:
		result = "rejected"
	}
	m.commands.WithLabelValues(kind, result).Inc()
}

// ObserveAsset implements controller.Observer
func (m *Metrics) ObserveAsset(kind string, fallback bool) {
	m.assets.WithLabelValues(kind, strconv.FormatBool(fallback)).Inc()
}

func (m *Metrics) observeBroadcast(sent bool) {
	if sent {
		m.broadcasts.WithLabelValues("sent").Inc()
	} else {
		m.broadcasts.WithLabelValues("dropped").Inc()
	}
}
