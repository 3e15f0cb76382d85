package codec

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// spkiCodec wraps the PKCS#1 public key encoding in the X.509
// SubjectPublicKeyInfo envelope:
//
//	SubjectPublicKeyInfo ::= SEQUENCE {
//	    algorithm        AlgorithmIdentifier,
//	    subjectPublicKey BIT STRING }
//
// The BIT STRING payload is the DER RSAPublicKey with zero unused bits.
// Public keys only.
type spkiCodec struct {
	inner keys.Codec
}

// NewSpkiCodec returns the codec for SubjectPublicKeyInfo blobs.
func NewSpkiCodec() keys.Codec {
	return &spkiCodec{inner: NewPkcs1Codec()}
}

func (c *spkiCodec) Format() keys.BlobFormat {
	return keys.FormatSubjectPublicKeyInfo
}

// DecodePublic unwraps the SubjectPublicKeyInfo envelope and delegates the
// BIT STRING payload to the PKCS#1 codec.
func (c *spkiCodec) DecodePublic(blob []byte) (keys.Parameters, error) {
	if err := checkOuterTLV(blob, derSequenceTag); err != nil {
		return keys.Parameters{}, err
	}

	input := cryptobyte.String(blob)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return keys.Parameters{}, fmt.Errorf("%w: bad SubjectPublicKeyInfo SEQUENCE", keys.ErrMalformedEncoding)
	}

	if err := readRsaAlgorithmIdentifier(&seq); err != nil {
		return keys.Parameters{}, err
	}

	var keyBits []byte
	if !seq.ReadASN1BitStringAsBytes(&keyBits) {
		return keys.Parameters{}, fmt.Errorf("%w: bad subjectPublicKey BIT STRING", keys.ErrMalformedEncoding)
	}
	if err := checkEmpty(seq, "SubjectPublicKeyInfo"); err != nil {
		return keys.Parameters{}, err
	}

	return c.inner.DecodePublic(keyBits)
}

// DecodePrivate always fails: the envelope is public-only.
func (c *spkiCodec) DecodePrivate(blob []byte) (keys.Parameters, error) {
	return keys.Parameters{}, fmt.Errorf("%w: SubjectPublicKeyInfo holds public keys only", keys.ErrUnsupportedAlgorithm)
}

// EncodePublic wraps the PKCS#1 public encoding in a SubjectPublicKeyInfo
// envelope.
func (c *spkiCodec) EncodePublic(params keys.Parameters) ([]byte, error) {
	pkcs1, err := c.inner.EncodePublic(params)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		addRsaAlgorithmIdentifier(seq)
		seq.AddASN1BitString(pkcs1)
	})
	return b.Bytes()
}

// EncodePrivate always fails; see DecodePrivate.
func (c *spkiCodec) EncodePrivate(params keys.Parameters) ([]byte, error) {
	return nil, fmt.Errorf("%w: SubjectPublicKeyInfo holds public keys only", keys.ErrUnsupportedAlgorithm)
}
