package codec

import (
	"fmt"

	"github.com/aescanero/dagoc/pkg/ports"
)

// New returns the codec registered under name ("json" or "yaml").
func New(name string) (ports.BundleCodec, error) {
	switch name {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported bundle encoding: %s", name)
	}
}
