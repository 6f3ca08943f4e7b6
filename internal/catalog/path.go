package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathStep is one access step of a response path: either a field lookup by
// name or an index into an ordered sequence.
type PathStep struct {
	Field   string
	Index   int
	IsIndex bool
}

// Path selects a string value out of a semi-structured response. It is
// written in the catalog as a dotted string where numeric segments index
// into arrays, e.g. "content.0.text" = field content, element 0, field text.
// Numeric segments are reserved for indexing: a field literally named "0"
// cannot be addressed by a catalog path.
type Path struct {
	raw   string
	steps []PathStep
}

// ParsePath parses the dotted path notation used by the catalog.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("path must not be empty")
	}
	segments := strings.Split(s, ".")
	steps := make([]PathStep, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return Path{}, fmt.Errorf("path %q contains an empty segment", s)
		}
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 {
				return Path{}, fmt.Errorf("path %q contains a negative index", s)
			}
			steps = append(steps, PathStep{Index: idx, IsIndex: true})
			continue
		}
		steps = append(steps, PathStep{Field: seg})
	}
	return Path{raw: s, steps: steps}, nil
}

// MustParsePath is ParsePath for statically known paths; it panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Steps returns the ordered access steps.
func (p Path) Steps() []PathStep {
	return p.steps
}

// IsZero reports whether the path was never set.
func (p Path) IsZero() bool {
	return len(p.steps) == 0
}

func (p Path) String() string {
	return p.raw
}

// UnmarshalYAML parses the dotted notation from a catalog file.
func (p *Path) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML renders the path back in dotted notation.
func (p Path) MarshalYAML() (any, error) {
	return p.raw, nil
}
