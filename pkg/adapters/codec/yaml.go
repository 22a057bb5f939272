package codec

import (
	"bytes"
	"fmt"

	"github.com/aescanero/dagoc/pkg/domain"
	"gopkg.in/yaml.v3"
)

// YAMLCodec encodes bundles as YAML documents.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Name returns the encoding name used in configuration.
func (c *YAMLCodec) Name() string { return "yaml" }

// ContentType returns the HTTP media type of encoded bundles.
func (c *YAMLCodec) ContentType() string { return "application/yaml" }

// Encode serializes bundle.
func (c *YAMLCodec) Encode(bundle *domain.Bundle) ([]byte, error) {
	doc, err := toDocument(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML bundle document.
func (c *YAMLCodec) Decode(data []byte) (*domain.Bundle, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.DecodeError{Msg: "malformed yaml document", Err: err}
	}
	return fromDocument(&doc)
}
