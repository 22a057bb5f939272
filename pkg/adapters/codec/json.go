package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aescanero/dagoc/pkg/domain"
)

// JSONCodec encodes bundles as indented JSON.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Name returns the encoding name used in configuration.
func (c *JSONCodec) Name() string { return "json" }

// ContentType returns the HTTP media type of encoded bundles.
func (c *JSONCodec) ContentType() string { return "application/json" }

// Encode serializes bundle. Map keys are sorted so output is deterministic.
func (c *JSONCodec) Encode(bundle *domain.Bundle) ([]byte, error) {
	doc, err := toDocument(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON bundle document.
func (c *JSONCodec) Decode(data []byte) (*domain.Bundle, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, &domain.DecodeError{Msg: "malformed json document", Err: err}
	}
	return fromDocument(&doc)
}
