package engine

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"modelbridge/internal/catalog"
)

// ExtractKind classifies why a path failed to resolve.
type ExtractKind string

const (
	// PathNotFound: a field step named a key absent from the mapping.
	PathNotFound ExtractKind = "path_not_found"
	// IndexOutOfRange: an index step exceeded the sequence bounds.
	IndexOutOfRange ExtractKind = "index_out_of_range"
	// TypeMismatch: a step expected a container (or a terminal string) and
	// found something else.
	TypeMismatch ExtractKind = "type_mismatch"
)

// ExtractError reports a response-shape mismatch. During streaming it marks
// an event as non-content metadata; on a full response it is fatal.
type ExtractError struct {
	Kind ExtractKind
	Path string
	Step int
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s at step %d of path %q", e.Kind, e.Step, e.Path)
}

// Extract resolves a catalog path against a raw JSON value and returns the
// string it selects. It is a pure function of (path, raw); no caller state
// is touched on failure.
func Extract(path catalog.Path, raw []byte) (string, *ExtractError) {
	if !gjson.ValidBytes(raw) {
		return "", &ExtractError{Kind: TypeMismatch, Path: path.String(), Step: 0}
	}

	cur := gjson.ParseBytes(raw)
	for i, step := range path.Steps() {
		if step.IsIndex {
			if !cur.IsArray() {
				return "", &ExtractError{Kind: TypeMismatch, Path: path.String(), Step: i}
			}
			elems := cur.Array()
			if step.Index >= len(elems) {
				return "", &ExtractError{Kind: IndexOutOfRange, Path: path.String(), Step: i}
			}
			cur = elems[step.Index]
			continue
		}

		if !cur.IsObject() {
			return "", &ExtractError{Kind: TypeMismatch, Path: path.String(), Step: i}
		}
		next := cur.Get(escapeField(step.Field))
		if !next.Exists() {
			return "", &ExtractError{Kind: PathNotFound, Path: path.String(), Step: i}
		}
		cur = next
	}

	if cur.Type != gjson.String {
		return "", &ExtractError{Kind: TypeMismatch, Path: path.String(), Step: len(path.Steps())}
	}
	return cur.String(), nil
}

// escapeField quotes gjson path metacharacters so a field step is always a
// literal key lookup.
func escapeField(field string) string {
	if !strings.ContainsAny(field, `.*?\|#@`) {
		return field
	}
	var b strings.Builder
	for _, r := range field {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
