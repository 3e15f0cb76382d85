package codec

import (
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// Registry holds one codec per blob format. The format set is closed, so the
// table is built once and selection is a plain lookup.
type Registry struct {
	codecs map[keys.BlobFormat]keys.Codec
}

// NewRegistry builds the registry over every supported codec.
func NewRegistry() *Registry {
	registry := &Registry{codecs: make(map[keys.BlobFormat]keys.Codec)}
	for _, c := range []keys.Codec{
		NewPkcs1Codec(),
		NewPkcs8Codec(),
		NewSpkiCodec(),
		NewCapiCodec(),
	} {
		registry.codecs[c.Format()] = c
	}
	return registry
}

// ForFormat returns the codec registered for format, or
// ErrUnsupportedAlgorithm for a tag outside the closed set.
func (r *Registry) ForFormat(format keys.BlobFormat) (keys.Codec, error) {
	c, ok := r.codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: no codec for format %q", keys.ErrUnsupportedAlgorithm, format)
	}
	return c, nil
}
