package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"modelbridge/internal/catalog"
	"modelbridge/internal/metrics"
	"modelbridge/internal/transport"
)

// StreamDecoder lazily turns raw backend events into normalized text
// increments. It is pull-based and forward-only: each Next call consumes at
// most as many events as needed to produce one chunk, so the HTTP layer can
// forward increments to its client as they arrive. A decoder serves exactly
// one request and is not safe for concurrent use.
type StreamDecoder struct {
	desc   *catalog.ModelDescriptor
	events transport.EventStream
	log    *slog.Logger

	received int
	emitted  int
	done     bool
}

// DecodeStream resolves the model and wraps the raw event sequence in a
// decoder. The decoder takes ownership of the stream and closes it when the
// sequence ends, fails, or is closed early.
func (e *Engine) DecodeStream(events transport.EventStream, model string) (*StreamDecoder, error) {
	desc, err := e.registry.Resolve(model)
	if err != nil {
		return nil, err
	}
	return &StreamDecoder{
		desc:   desc,
		events: events,
		log:    e.log.With("model", model, "stream_id", uuid.NewString()),
	}, nil
}

// Next returns the next normalized chunk. Events whose payload does not
// match the model's chunk path are control/metadata frames and are skipped
// silently. Next returns io.EOF when the backend signals end of stream and
// passes transport errors through as the terminal value of the sequence;
// chunks already returned are never retracted.
func (d *StreamDecoder) Next(ctx context.Context) (string, error) {
	if d.done {
		return "", io.EOF
	}

	for {
		raw, err := d.events.Next(ctx)
		if err != nil {
			d.done = true
			_ = d.events.Close()
			if errors.Is(err, io.EOF) {
				d.logIfEmpty()
				return "", io.EOF
			}
			return "", err
		}
		d.received++

		chunk, exErr := Extract(d.desc.StreamChunkPath, raw)
		if exErr != nil {
			metrics.StreamEventsSkipped.WithLabelValues(d.desc.Name).Inc()
			d.log.Debug("skipping non-content event", "reason", exErr.Error())
			continue
		}

		d.emitted++
		metrics.StreamChunks.WithLabelValues(d.desc.Name).Inc()
		return chunk, nil
	}
}

// Close stops the decoder and releases the underlying event stream. It is
// the consumer's hook for disconnects and timeouts; safe to call at any time.
func (d *StreamDecoder) Close() error {
	if d.done {
		return nil
	}
	d.done = true
	return d.events.Close()
}

// logIfEmpty surfaces a stream that carried events but never matched the
// chunk path. That is a catalog/backend shape disagreement worth flagging,
// but the stream itself completed, so it is a warning rather than a failure.
func (d *StreamDecoder) logIfEmpty() {
	if d.received == 0 || d.emitted > 0 {
		return
	}
	metrics.DecodeWarnings.WithLabelValues(d.desc.Name).Inc()
	d.log.Warn("stream closed without any extractable chunk",
		"events_received", d.received,
		"chunk_path", d.desc.StreamChunkPath.String(),
	)
}
