package keys

import "fmt"

// BlobFormat identifies one of the supported RSA key blob encodings. The set
// is closed: codec selection happens through a lookup table keyed by this
// type, so adding a format means adding a constant here and a codec for it.
type BlobFormat string

const (
	// FormatPkcs1 is the raw DER RSAPublicKey / RSAPrivateKey encoding.
	FormatPkcs1 BlobFormat = "pkcs1"

	// FormatPkcs8 is the DER PrivateKeyInfo envelope around a PKCS#1
	// private key. Private keys only.
	FormatPkcs8 BlobFormat = "pkcs8"

	// FormatSubjectPublicKeyInfo is the X.509 public key envelope around a
	// PKCS#1 public key. Public keys only.
	FormatSubjectPublicKeyInfo BlobFormat = "spki"

	// FormatCapi is the legacy fixed-layout Microsoft binary blob
	// (PUBLICKEYBLOB / PRIVATEKEYBLOB), kept for interoperability with
	// existing consumers of that format.
	FormatCapi BlobFormat = "capi"
)

// ParseBlobFormat maps a caller-supplied format tag onto a BlobFormat.
// Unknown tags fail with ErrUnsupportedAlgorithm.
func ParseBlobFormat(tag string) (BlobFormat, error) {
	switch BlobFormat(tag) {
	case FormatPkcs1, FormatPkcs8, FormatSubjectPublicKeyInfo, FormatCapi:
		return BlobFormat(tag), nil
	default:
		return "", fmt.Errorf("%w: unknown blob format %q", ErrUnsupportedAlgorithm, tag)
	}
}

// SupportedBlobFormats lists every format in a stable order, for CLI help
// text and API responses.
func SupportedBlobFormats() []BlobFormat {
	return []BlobFormat{FormatPkcs1, FormatPkcs8, FormatSubjectPublicKeyInfo, FormatCapi}
}
