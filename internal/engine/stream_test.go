package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"modelbridge/internal/core"
	"modelbridge/internal/metrics"
)

// fakeEventStream is a test double for the transport collaborator's raw
// event sequence.
type fakeEventStream struct {
	events      [][]byte
	terminalErr error // returned after the events instead of io.EOF
	pos         int
	closed      bool
}

func (f *fakeEventStream) Next(_ context.Context) ([]byte, error) {
	if f.pos >= len(f.events) {
		if f.terminalErr != nil {
			return nil, f.terminalErr
		}
		return nil, io.EOF
	}
	ev := f.events[f.pos]
	f.pos++
	return ev, nil
}

func (f *fakeEventStream) Close() error {
	f.closed = true
	return nil
}

func events(raw ...string) [][]byte {
	out := make([][]byte, len(raw))
	for i, r := range raw {
		out[i] = []byte(r)
	}
	return out
}

func drain(t *testing.T, d *StreamDecoder) ([]string, error) {
	t.Helper()
	var chunks []string
	for {
		chunk, err := d.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
}

func TestStreamDecoder(t *testing.T) {
	e := New(newTestRegistry(t))

	t.Run("metadata events skipped silently", func(t *testing.T) {
		src := &fakeEventStream{events: events(
			`{"generation":"Hel"}`,
			`{"generation":"lo"}`,
			`{"meta":"done"}`,
		)}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}

		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}
		if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
			t.Errorf("chunks = %v, want [Hel lo]", chunks)
		}
		if !src.closed {
			t.Error("decoder must close the event stream at end of sequence")
		}
	})

	t.Run("control frames around content", func(t *testing.T) {
		src := &fakeEventStream{events: events(
			`{"type":"message_start","message":{"id":"msg_1"}}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hi"}}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":" there"}}`,
			`{"type":"message_stop"}`,
		)}
		d, err := e.DecodeStream(src, "claude-3-sonnet")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}

		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}
		if strings.Join(chunks, "") != "Hi there" {
			t.Errorf("chunks = %v", chunks)
		}
	})

	t.Run("zero-chunk reply is legal", func(t *testing.T) {
		d, err := e.DecodeStream(&fakeEventStream{}, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}
		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("chunks = %v, want none", chunks)
		}
	})

	t.Run("all-metadata stream warns but does not fail", func(t *testing.T) {
		warningsBefore := testutil.ToFloat64(metrics.DecodeWarnings.WithLabelValues("llama3-8b-instruct"))

		src := &fakeEventStream{events: events(`{"meta":"a"}`, `{"meta":"b"}`)}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}

		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("a stream of only metadata events must end cleanly, got %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("chunks = %v, want none", chunks)
		}
		if !src.closed {
			t.Error("stream must still be released")
		}

		warningsAfter := testutil.ToFloat64(metrics.DecodeWarnings.WithLabelValues("llama3-8b-instruct"))
		if got := warningsAfter - warningsBefore; got != 1 {
			t.Errorf("decode warning counter moved by %v, want 1", got)
		}
	})

	t.Run("empty increments pass through", func(t *testing.T) {
		src := &fakeEventStream{events: events(`{"generation":""}`, `{"generation":"x"}`)}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}
		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}
		if len(chunks) != 2 || chunks[0] != "" || chunks[1] != "x" {
			t.Errorf("chunks = %v, want [\"\" x]", chunks)
		}
	})

	t.Run("transport error terminates the sequence", func(t *testing.T) {
		transportErr := core.NewTransportError(core.KindThrottled, "llama3-8b-instruct", "slow down", nil)
		src := &fakeEventStream{
			events:      events(`{"generation":"par"}`),
			terminalErr: transportErr,
		}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}

		chunk, err := d.Next(context.Background())
		if err != nil || chunk != "par" {
			t.Fatalf("first Next() = %q, %v", chunk, err)
		}

		// The failure arrives as the terminal value; the chunk already
		// emitted is not retracted.
		if _, err := d.Next(context.Background()); !errors.Is(err, transportErr) {
			t.Fatalf("expected terminal transport error, got %v", err)
		}
		if !src.closed {
			t.Error("stream must be released on terminal error")
		}
		if _, err := d.Next(context.Background()); !errors.Is(err, io.EOF) {
			t.Errorf("decoder must stay closed after the terminal error, got %v", err)
		}
	})

	t.Run("close releases the stream early", func(t *testing.T) {
		src := &fakeEventStream{events: events(`{"generation":"a"}`, `{"generation":"b"}`)}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}
		if _, err := d.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !src.closed {
			t.Error("Close() must release the transport stream")
		}
		if _, err := d.Next(context.Background()); !errors.Is(err, io.EOF) {
			t.Errorf("Next() after Close() = %v, want EOF", err)
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := e.DecodeStream(&fakeEventStream{}, "no-such-model")
		var bridgeErr *core.Error
		if !errors.As(err, &bridgeErr) || bridgeErr.Kind != core.KindNotFound {
			t.Fatalf("expected not-found error, got %v", err)
		}
	})
}

// TestStreamMatchesFull checks the consistency property between the two
// decode paths: concatenating all streamed chunks equals the full decode of
// the equivalent complete response.
func TestStreamMatchesFull(t *testing.T) {
	e := New(newTestRegistry(t))

	t.Run("structured model", func(t *testing.T) {
		src := &fakeEventStream{events: events(
			`{"type":"message_start"}`,
			`{"delta":{"text":"The answer"}}`,
			`{"delta":{"text":" is 42."}}`,
			`{"type":"message_stop"}`,
		)}
		d, err := e.DecodeStream(src, "claude-3-sonnet")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}
		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}

		full, err := e.DecodeFull([]byte(`{"content":[{"text":"The answer is 42."}]}`), "claude-3-sonnet")
		if err != nil {
			t.Fatalf("DecodeFull() error = %v", err)
		}
		if got := strings.Join(chunks, ""); got != full {
			t.Errorf("streamed %q != full %q", got, full)
		}
	})

	t.Run("flattened model", func(t *testing.T) {
		src := &fakeEventStream{events: events(
			`{"generation":"Tw"}`,
			`{"generation":"o"}`,
		)}
		d, err := e.DecodeStream(src, "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeStream() error = %v", err)
		}
		chunks, err := drain(t, d)
		if err != nil {
			t.Fatalf("drain error = %v", err)
		}

		full, err := e.DecodeFull([]byte(`{"generation":"Two"}`), "llama3-8b-instruct")
		if err != nil {
			t.Fatalf("DecodeFull() error = %v", err)
		}
		if got := strings.Join(chunks, ""); got != full {
			t.Errorf("streamed %q != full %q", got, full)
		}
	})
}
