package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"modelbridge/internal/core"
)

// doneSentinel terminates an SSE stream per the OpenAI wire convention.
var doneSentinel = []byte("[DONE]")

// SSEStream adapts a server-sent-events response body into an EventStream.
// Each `data:` line becomes one raw event; comment lines, event-type lines,
// and blank keep-alive lines are framing and never surface as events. The
// `[DONE]` sentinel ends the stream. Consecutive `data:` lines of one SSE
// event are not coalesced; inference backends emit one data line per event.
type SSEStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// NewSSEStream wraps an SSE response body. The stream takes ownership of the
// body and closes it when the stream ends or Close is called.
func NewSSEStream(body io.ReadCloser) *SSEStream {
	scanner := bufio.NewScanner(body)
	// Streaming chunks are small, but full-response events on some backends
	// are not; allow lines up to 1MB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &SSEStream{body: body, scanner: scanner}
}

// Next returns the next event payload. Cancellation is observed between
// events; an in-flight read is released by Close, which the owning request
// must call on disconnect.
func (s *SSEStream) Next(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			s.finish()
			return nil, err
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			// event:/id:/retry: framing lines
			continue
		}
		data = bytes.TrimSpace(data)
		if bytes.Equal(data, doneSentinel) {
			s.finish()
			return nil, io.EOF
		}

		// The scanner reuses its buffer on the next Scan.
		event := make([]byte, len(data))
		copy(event, data)
		return event, nil
	}

	err := s.scanner.Err()
	s.finish()
	if err != nil && ctx.Err() == nil {
		return nil, core.NewTransportError(core.KindUnavailable, "", "event stream read failed: "+err.Error(), err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, io.EOF
}

// Close releases the underlying response body. Safe to call more than once.
func (s *SSEStream) Close() error {
	if s.done {
		return nil
	}
	return s.finish()
}

func (s *SSEStream) finish() error {
	s.done = true
	return s.body.Close()
}
