package catalog

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of the model catalog, the only static
// file format owned by this core.
type catalogFile struct {
	Models []*ModelDescriptor `yaml:"models"`
}

// Load reads and validates the model catalog at the given path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model catalog: %w", err)
	}
	reg, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("model catalog %s: %w", path, err)
	}
	return reg, nil
}

// LoadBytes parses a catalog document and builds the registry. Unknown YAML
// fields are rejected so a typo in a marker name fails loudly at startup
// instead of silently producing wrong prompts.
func LoadBytes(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	reg, err := NewRegistry(file.Models)
	if err != nil {
		return nil, err
	}
	reg.fingerprint = fmt.Sprintf("%016x", xxhash.Sum64(data))

	slog.Info("model catalog loaded",
		"models", reg.Len(),
		"fingerprint", reg.fingerprint,
	)
	return reg, nil
}
