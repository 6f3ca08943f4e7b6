// Package core provides the normalized chat types and error taxonomy shared
// by the catalog, engine, and transport packages.
package core

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three normalized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is a single normalized chat turn.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenParams holds the caller-supplied generation parameters for one request.
// MaxTokens <= 0 means "as many as the model supports"; the builder clamps
// any requested value to the descriptor's supported maximum.
type GenParams struct {
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	// Stream selects the transport call form (event sequence vs single
	// response). It is handed to the transport alongside the built body and
	// is never embedded in the body itself.
	Stream bool
}

// RequestBody is the vendor-shaped request produced by the builder. It is
// opaque to the HTTP layer; the transport marshals it as JSON.
type RequestBody map[string]any
