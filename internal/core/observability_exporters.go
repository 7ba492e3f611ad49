package core

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PrometheusMetricsRecorder exports operation latency and outcome counts.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the service collectors on reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auditdesk",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Duration of data-service operations including simulated latency.",
			Buckets:   []float64{.005, .05, .1, .2, .3, .4, .5, .6, .8, 1, 2},
		}, []string{"operation", "result"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditdesk",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Data-service operations by outcome.",
		}, []string{"operation", "result"}),
	}
	if err := reg.Register(rec.durations); err != nil {
		return nil, err
	}
	if err := reg.Register(rec.results); err != nil {
		reg.Unregister(rec.durations)
		return nil, err
	}
	return rec, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.durations.WithLabelValues(operation, result).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, result).Inc()
}

// OTelTracer adapts an OpenTelemetry tracer to the service Tracer interface.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer builds a tracer from the provider under the auditdesk scope.
func NewOTelTracer(provider trace.TracerProvider) *OTelTracer {
	return &OTelTracer{tracer: provider.Tracer("auditdesk/internal/core")}
}

// Start implements the Tracer interface.
func (t *OTelTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	ctx, span := t.tracer.Start(ctx, operation)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

// JSONTraceEntry represents a serialized trace span emitted by JSONTraceTracer.
type JSONTraceEntry struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceRetain bounds the spans a JSONTraceTracer keeps for Entries.
const JSONTraceRetain = 256

// JSONTraceTracer writes spans as JSON lines and retains the most recent
// JSONTraceRetain of them for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
	now     func() time.Time
}

// NewJSONTracer constructs a tracer writing to w. A nil writer only retains spans.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc, now: func() time.Time { return time.Now().UTC() }}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements the Tracer interface.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: t.now()}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	entry := JSONTraceEntry{
		Operation: s.operation,
		Status:    "success",
		StartedAt: s.started,
		EndedAt:   s.tracer.now(),
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	entry.DurationMS = float64(entry.EndedAt.Sub(s.started)) / float64(time.Millisecond)

	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if over := len(s.tracer.entries) - JSONTraceRetain; over > 0 {
		s.tracer.entries = append(s.tracer.entries[:0], s.tracer.entries[over:]...)
	}
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
}
