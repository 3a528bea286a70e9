package telemetry

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const subsystem = "radiance_cache"

// Metrics exposes the controller decisions as Prometheus metrics. Each
// instance owns its registry so concurrent runs do not share series.
type Metrics struct {
	registry *prometheus.Registry

	trainingDimensions *prometheus.GaugeVec
	boundDimensions    *prometheus.GaugeVec
	iterations         prometheus.Gauge
	rawSamples         prometheus.Gauge
	smoothedSamples    prometheus.Gauge
	frames             *prometheus.CounterVec
	resets             *prometheus.CounterVec
	resizes            prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		trainingDimensions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      "training_dimensions",
				Help:      "Active training workload dimensions.",
			},
			[]string{"axis"},
		),
		boundDimensions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      "training_bound_dimensions",
				Help:      "Upper bound for the training workload dimensions.",
			},
			[]string{"axis"},
		),
		iterations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      "training_iterations",
				Help:      "Training iterations requested for the current frame.",
			},
		),
		rawSamples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      "raw_samples",
				Help:      "Training samples drained from the feedback channel.",
			},
		),
		smoothedSamples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      "smoothed_samples",
				Help:      "Running mean of the training samples in the current epoch.",
			},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "frames_total",
				Help:      "Count of frames by controller phase.",
			},
			[]string{"phase"},
		),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "resets_total",
				Help:      "Count of controller resets by reason.",
			},
			[]string{"reason"},
		),
		resizes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "resizes_total",
				Help:      "Count of epochs that committed new training dimensions.",
			},
		),
	}

	m.registry.MustRegister(
		m.trainingDimensions,
		m.boundDimensions,
		m.iterations,
		m.rawSamples,
		m.smoothedSamples,
		m.frames,
		m.resets,
		m.resizes,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Record(_ context.Context, rec Record) error {
	m.trainingDimensions.WithLabelValues("x").Set(float64(rec.Width))
	m.trainingDimensions.WithLabelValues("y").Set(float64(rec.Height))
	m.boundDimensions.WithLabelValues("x").Set(float64(rec.BoundWidth))
	m.boundDimensions.WithLabelValues("y").Set(float64(rec.BoundHeight))
	m.iterations.Set(float64(rec.Iterations))
	m.rawSamples.Set(float64(rec.RawSamples))
	m.smoothedSamples.Set(rec.SmoothedSamples)
	m.frames.WithLabelValues(rec.Phase).Inc()
	if rec.ResetReason != "" {
		m.resets.WithLabelValues(rec.ResetReason).Inc()
	}
	if rec.Resized {
		m.resizes.Inc()
	}
	return nil
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
