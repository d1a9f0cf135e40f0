package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordAnalysis(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnalysis(ctx, "tomato", "GA", StatusOK, 100)
	m.RecordAnalysis(ctx, "tomato", "GA", StatusOK, 71)
	m.RecordAnalysis(ctx, "dance", "RP", StatusError, 0)

	rm := collect(t, reader)

	requests := findMetric(rm, "voicelab.analyze.requests")
	if requests == nil {
		t.Fatal("voicelab.analyze.requests not found")
	}
	if got := counterTotal(t, requests); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}

	scores := findMetric(rm, "voicelab.analyze.score")
	if scores == nil {
		t.Fatal("voicelab.analyze.score not found")
	}
	hist, ok := scores.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("Expected Histogram[int64], got %T", scores.Data)
	}
	var count uint64
	var sum int64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		sum += dp.Sum
	}
	if count != 2 || sum != 171 {
		t.Errorf("Expected 2 scores summing to 171, got %d summing to %d", count, sum)
	}
}

func TestRecordTranscriptionAndMIDI(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTranscription(ctx, "wav2vec2", 0.42)
	m.RecordMIDIConversion(ctx, StatusOK)
	m.RecordMIDIConversion(ctx, StatusError)

	rm := collect(t, reader)

	duration := findMetric(rm, "voicelab.transcription.duration")
	if duration == nil {
		t.Fatal("voicelab.transcription.duration not found")
	}
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("Expected Histogram[float64], got %T", duration.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("Expected one transcription observation, got %+v", hist.DataPoints)
	}

	conversions := findMetric(rm, "voicelab.midi.conversions")
	if conversions == nil {
		t.Fatal("voicelab.midi.conversions not found")
	}
	if got := counterTotal(t, conversions); got != 2 {
		t.Errorf("Expected 2 conversions, got %d", got)
	}
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	m, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(Middleware(m))
	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=5", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, rec.Code)
	}

	rm := collect(t, reader)
	duration := findMetric(rm, "voicelab.http.request.duration")
	if duration == nil {
		t.Fatal("voicelab.http.request.duration not found")
	}
	hist := duration.Data.(metricdata.Histogram[float64])
	if len(hist.DataPoints) != 1 {
		t.Fatalf("Expected 1 data point, got %d", len(hist.DataPoints))
	}
	route, ok := hist.DataPoints[0].Attributes.Value("route")
	if !ok || route.AsString() != "/history" {
		t.Errorf("Expected route /history, got %v", route.AsString())
	}
	status, _ := hist.DataPoints[0].Attributes.Value("status")
	if status.AsInt64() != http.StatusTeapot {
		t.Errorf("Expected status attribute 418, got %d", status.AsInt64())
	}
}
