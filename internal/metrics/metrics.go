// Package metrics exposes Prometheus collectors for request building and
// response decoding. The HTTP layer decides how (and whether) to serve them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsBuilt counts vendor requests produced per model and calling
	// convention ("structured" or "flattened").
	RequestsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelbridge_requests_built_total",
		Help: "Vendor requests built, by model and calling convention.",
	}, []string{"model", "mode"})

	// StreamChunks counts normalized text increments emitted to callers.
	StreamChunks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelbridge_stream_chunks_total",
		Help: "Normalized chunks emitted from streaming responses.",
	}, []string{"model"})

	// StreamEventsSkipped counts raw events dropped as non-content metadata.
	StreamEventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelbridge_stream_events_skipped_total",
		Help: "Raw stream events skipped because no chunk could be extracted.",
	}, []string{"model"})

	// DecodeWarnings counts streams that closed without a single extracted
	// chunk despite carrying events.
	DecodeWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelbridge_decode_warnings_total",
		Help: "Streams that ended with events received but zero chunks extracted.",
	}, []string{"model"})

	// DecodeFailures counts fatal decode errors on non-streaming responses.
	DecodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelbridge_decode_failures_total",
		Help: "Non-streaming responses that did not match the declared shape.",
	}, []string{"model"})
)
