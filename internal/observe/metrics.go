// Package observe wires OpenTelemetry metrics for voicelab. Instruments are
// created from a metric.MeterProvider so tests can read them back through a
// manual reader; the serving binary exports them via Prometheus on /metrics.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "codeberg.org/snonux/voicelab"

// Metrics holds the instruments recorded by the servers and the analyzer.
type Metrics struct {
	// AnalyzeRequests counts pronunciation analyses by word, accent and status.
	AnalyzeRequests metric.Int64Counter

	// TranscriptionDuration tracks model latency per provider.
	TranscriptionDuration metric.Float64Histogram

	// Scores records the similarity score of every analysis.
	Scores metric.Int64Histogram

	// MIDIConversions counts audio to MIDI conversions by status.
	MIDIConversions metric.Int64Counter

	// HTTPRequestDuration tracks request latency by method and route.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

var scoreBuckets = []float64{
	10, 20, 30, 40, 50, 60, 70, 80, 90, 99, 100,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalyzeRequests, err = m.Int64Counter("voicelab.analyze.requests",
		metric.WithDescription("Pronunciation analyses by word, accent and status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("voicelab.transcription.duration",
		metric.WithDescription("Latency of phoneme transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Scores, err = m.Int64Histogram("voicelab.analyze.score",
		metric.WithDescription("Similarity score of analysed recordings."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MIDIConversions, err = m.Int64Counter("voicelab.midi.conversions",
		metric.WithDescription("Audio to MIDI conversions by status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("voicelab.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a shared instance bound to the global provider.
// Call it after InitProvider so the instruments reach the exporter.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAnalysis counts one analysis and, on success, records its score.
func (m *Metrics) RecordAnalysis(ctx context.Context, word, accent, status string, score int) {
	m.AnalyzeRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("word", word),
			attribute.String("accent", accent),
			attribute.String("status", status),
		),
	)
	if status == StatusOK {
		m.Scores.Record(ctx, int64(score),
			metric.WithAttributes(attribute.String("accent", accent)),
		)
	}
}

// RecordTranscription records how long a provider took.
func (m *Metrics) RecordTranscription(ctx context.Context, provider string, seconds float64) {
	m.TranscriptionDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordMIDIConversion counts one conversion.
func (m *Metrics) RecordMIDIConversion(ctx context.Context, status string) {
	m.MIDIConversions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// Status values used as metric attributes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
