package catalog

import (
	"fmt"

	"modelbridge/internal/core"
)

// Registry is the immutable model catalog. It is built once at startup and
// shared by reference across all in-flight requests; because it is never
// mutated after construction, concurrent reads need no locking.
type Registry struct {
	byName      map[string]*ModelDescriptor
	ordered     []*ModelDescriptor
	fingerprint string
}

// NewRegistry validates the descriptors and builds the lookup index.
// Insertion order is preserved for the discovery listing.
func NewRegistry(descriptors []*ModelDescriptor) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*ModelDescriptor, len(descriptors)),
		ordered: make([]*ModelDescriptor, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate model name %q in catalog", d.Name)
		}
		r.byName[d.Name] = d
		r.ordered = append(r.ordered, d)
	}
	return r, nil
}

// Resolve looks a descriptor up by exact, case-sensitive name.
func (r *Registry) Resolve(name string) (*ModelDescriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, core.NewNotFoundError(name)
	}
	return d, nil
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Fingerprint returns the content hash of the catalog file the registry was
// loaded from, or an empty string for registries built in code.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// Summary is the discovery view of one descriptor. Backend identifiers and
// encoding internals are deliberately not exposed here.
type Summary struct {
	Name               string `json:"name"`
	StructuredMessages bool   `json:"structured_messages"`
	MaxResponseTokens  int    `json:"max_response_tokens"`
}

// List returns the discovery listing in catalog insertion order. An empty
// registry yields an empty slice.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.ordered))
	for _, d := range r.ordered {
		out = append(out, Summary{
			Name:               d.Name,
			StructuredMessages: d.StructuredMessages,
			MaxResponseTokens:  d.MaxResponseTokens,
		})
	}
	return out
}
