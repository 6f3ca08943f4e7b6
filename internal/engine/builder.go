package engine

import (
	"fmt"

	"modelbridge/internal/catalog"
	"modelbridge/internal/core"
	"modelbridge/internal/metrics"
)

// BuildRequest produces the vendor-shaped request body for the named model.
// The message sequence is validated here even though the HTTP layer
// pre-checks it: an empty or malformed sequence fails closed instead of
// producing a half-built request. Building performs no I/O; an unknown model
// name is reported before any transport call can happen.
func (e *Engine) BuildRequest(messages []core.ChatMessage, model string, params core.GenParams) (core.RequestBody, error) {
	desc, err := e.registry.Resolve(model)
	if err != nil {
		return nil, err
	}
	if err := validateMessages(messages); err != nil {
		return nil, err
	}

	if desc.StructuredMessages {
		metrics.RequestsBuilt.WithLabelValues(model, "structured").Inc()
		return buildStructured(desc, messages, params), nil
	}
	metrics.RequestsBuilt.WithLabelValues(model, "flattened").Inc()
	return buildFlattened(desc, messages, params), nil
}

func validateMessages(messages []core.ChatMessage) error {
	if len(messages) == 0 {
		return core.NewValidationError("message sequence must not be empty", nil)
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return core.NewValidationError(fmt.Sprintf("message %d has unknown role %q", i, m.Role), nil)
		}
	}
	return nil
}

// buildStructured emits the chat turns as a native role/content array. When
// the descriptor names a system field, the first system message is extracted
// out of the array and placed under that top-level key; it is not duplicated.
func buildStructured(desc *catalog.ModelDescriptor, messages []core.ChatMessage, params core.GenParams) core.RequestBody {
	body := core.RequestBody{}

	turns := make([]map[string]string, 0, len(messages))
	systemExtracted := false
	for _, m := range messages {
		if desc.SystemField != "" && !systemExtracted && m.Role == core.RoleSystem {
			body[desc.SystemField] = m.Content
			systemExtracted = true
			continue
		}
		turns = append(turns, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	body["messages"] = turns

	applyGenParams(body, desc, params)
	mergeSpecialFields(body, desc)
	return body
}

// buildFlattened hand-encodes the chat turns into one prompt string. The
// end-of-message marker travels as a stop sequence, not as prompt text.
func buildFlattened(desc *catalog.ModelDescriptor, messages []core.ChatMessage, params core.GenParams) core.RequestBody {
	body := core.RequestBody{
		"prompt": flattenPrompt(desc.PromptTemplate, messages),
	}
	if desc.PromptTemplate.EndOfMessage != "" {
		body["stop_sequences"] = []string{desc.PromptTemplate.EndOfMessage}
	}

	applyGenParams(body, desc, params)
	mergeSpecialFields(body, desc)
	return body
}

func applyGenParams(body core.RequestBody, desc *catalog.ModelDescriptor, params core.GenParams) {
	body[desc.TokenLimitParam] = clampTokens(params.MaxTokens, desc.MaxResponseTokens)
	if params.Temperature != nil {
		body["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		body["top_p"] = *params.TopP
	}
}

// clampTokens enforces the backend's response-token ceiling. Backends reject
// over-limit requests outright, so this is a correctness requirement.
func clampTokens(requested, supported int) int {
	if requested <= 0 || requested > supported {
		return supported
	}
	return requested
}

// mergeSpecialFields overlays the descriptor's backend-required constants.
// They are merged verbatim and win on key collisions.
func mergeSpecialFields(body core.RequestBody, desc *catalog.ModelDescriptor) {
	for k, v := range desc.SpecialRequestFields {
		body[k] = v
	}
}
