package overlay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a YAML overlay
func LoadFile(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedInputError{Source: path, Err: fmt.Errorf("failed to read overlay file: %w", err)}
	}
	return Parse(path, data)
}

// Parse decodes and validates a YAML overlay. Unknown fields are rejected.
func Parse(source string, data []byte) (*Overlay, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var o Overlay
	if err := dec.Decode(&o); err != nil {
		return nil, &MalformedInputError{Source: source, Err: fmt.Errorf("failed to parse overlay: %w", err)}
	}

	if err := Validate(&o); err != nil {
		return nil, &MalformedInputError{Source: source, Err: err}
	}

	return &o, nil
}

// Marshal encodes the overlay as YAML
func Marshal(o *Overlay) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}
