package engine

import (
	"modelbridge/internal/core"
	"modelbridge/internal/metrics"
)

// DecodeFull extracts the complete reply text from one non-streaming raw
// response. Unlike streaming, a shape mismatch here has no later event to
// fall back on, so it is fatal to the request.
func (e *Engine) DecodeFull(raw []byte, model string) (string, error) {
	desc, err := e.registry.Resolve(model)
	if err != nil {
		return "", err
	}

	text, exErr := Extract(desc.FullResponsePath, raw)
	if exErr != nil {
		metrics.DecodeFailures.WithLabelValues(model).Inc()
		return "", core.NewDecodeError(model, "response did not match declared shape: "+exErr.Error(), exErr)
	}
	return text, nil
}
