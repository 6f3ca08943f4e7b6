// Package catalog holds the static per-model descriptors that drive request
// building and response decoding, loaded once at startup from a YAML file
// and never mutated afterwards.
package catalog

import (
	"fmt"

	"modelbridge/internal/core"
)

// RoleMarkers are the per-role concatenation markers of a flattened-prompt
// template.
type RoleMarkers struct {
	MessagePrefix string `yaml:"message_prefix"`
	MessageSuffix string `yaml:"message_suffix"`
	RolePrefix    string `yaml:"role_prefix"`
	RoleSuffix    string `yaml:"role_suffix"`
}

// PromptTemplate describes how to hand-encode chat turns into a single
// prompt string for backends without native chat turns.
type PromptTemplate struct {
	// BeginOfSequence is emitted exactly once, before the first message.
	BeginOfSequence string `yaml:"begin_of_sequence"`
	// EndOfMessage is the backend's stop sequence. It is passed as
	// generation metadata and never concatenated into the prompt body.
	EndOfMessage string `yaml:"end_of_message"`
	// DisplayRoleNames controls whether role label markers are emitted.
	DisplayRoleNames bool                      `yaml:"display_role_names"`
	Roles            map[core.Role]RoleMarkers `yaml:"roles"`
}

// ModelDescriptor is the static encoding record for one model. Descriptors
// are read-only after load; concurrent access needs no synchronization.
type ModelDescriptor struct {
	Name      string `yaml:"name"`
	BackendID string `yaml:"backend_id"`

	// StructuredMessages selects the calling convention: chat turns as a
	// native role/content array (true) or a flattened prompt string (false).
	StructuredMessages bool `yaml:"structured_messages"`

	// SystemField, when set on a structured-mode model, names the top-level
	// request key the leading system message is extracted into. Empty keeps
	// system messages inline in the message array.
	SystemField string `yaml:"system_field"`

	// TokenLimitParam is the backend's name for the generation-limit
	// parameter; it differs per model family.
	TokenLimitParam   string `yaml:"token_limit_param"`
	MaxResponseTokens int    `yaml:"max_response_tokens"`

	// StreamChunkPath selects the incremental text fragment out of one
	// streaming event; FullResponsePath selects the final text out of a
	// complete response.
	StreamChunkPath  Path `yaml:"stream_chunk_path"`
	FullResponsePath Path `yaml:"full_response_path"`

	// SpecialRequestFields carries backend-required constants (e.g. a
	// protocol-version tag) merged verbatim into every built request.
	SpecialRequestFields map[string]any `yaml:"special_request_fields"`

	// PromptTemplate is required iff StructuredMessages is false.
	PromptTemplate *PromptTemplate `yaml:"prompt_template"`
}

// Validate checks that the descriptor is internally consistent. Violations
// are configuration mistakes surfaced at load time, not per-request errors.
func (d *ModelDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor is missing a name")
	}
	if d.BackendID == "" {
		return fmt.Errorf("model %q: backend_id is required", d.Name)
	}
	if d.TokenLimitParam == "" {
		return fmt.Errorf("model %q: token_limit_param is required", d.Name)
	}
	if d.MaxResponseTokens <= 0 {
		return fmt.Errorf("model %q: max_response_tokens must be positive", d.Name)
	}
	if d.StreamChunkPath.IsZero() {
		return fmt.Errorf("model %q: stream_chunk_path is required", d.Name)
	}
	if d.FullResponsePath.IsZero() {
		return fmt.Errorf("model %q: full_response_path is required", d.Name)
	}

	if d.StructuredMessages {
		if d.PromptTemplate != nil {
			return fmt.Errorf("model %q: prompt_template is only valid for flattened-prompt models", d.Name)
		}
		return nil
	}

	if d.SystemField != "" {
		return fmt.Errorf("model %q: system_field is only valid for structured-message models", d.Name)
	}
	if d.PromptTemplate == nil {
		return fmt.Errorf("model %q: flattened-prompt models require a prompt_template", d.Name)
	}
	for _, role := range []core.Role{core.RoleSystem, core.RoleUser, core.RoleAssistant} {
		if _, ok := d.PromptTemplate.Roles[role]; !ok {
			return fmt.Errorf("model %q: prompt_template is missing markers for role %q", d.Name, role)
		}
	}
	for role := range d.PromptTemplate.Roles {
		if !role.Valid() {
			return fmt.Errorf("model %q: prompt_template declares unknown role %q", d.Name, role)
		}
	}
	return nil
}
