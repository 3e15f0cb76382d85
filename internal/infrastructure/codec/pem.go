package codec

import (
	"encoding/pem"
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// PEM block types for the DER formats, matching what openssl emits.
var pemTypes = map[keys.BlobFormat]struct{ public, private string }{
	keys.FormatPkcs1:                {public: "RSA PUBLIC KEY", private: "RSA PRIVATE KEY"},
	keys.FormatPkcs8:                {private: "PRIVATE KEY"},
	keys.FormatSubjectPublicKeyInfo: {public: "PUBLIC KEY"},
}

// EncodePem wraps an encoded DER blob in PEM armor. The legacy CAPI blob has
// no PEM convention and is rejected.
func EncodePem(blob []byte, format keys.BlobFormat, private bool) ([]byte, error) {
	types, ok := pemTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: format %q has no PEM representation", keys.ErrUnsupportedAlgorithm, format)
	}
	blockType := types.public
	if private {
		blockType = types.private
	}
	if blockType == "" {
		return nil, fmt.Errorf("%w: format %q cannot hold that key type", keys.ErrUnsupportedAlgorithm, format)
	}
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: blob}), nil
}

// DecodePem strips PEM armor when present and passes raw DER through
// untouched, so file-based callers can feed either form to a codec.
func DecodePem(data []byte) []byte {
	block, _ := pem.Decode(data)
	if block == nil {
		return data
	}
	return block.Bytes
}
