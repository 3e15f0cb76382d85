package codec

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// oidRsaEncryption is the rsaEncryption algorithm identifier from PKCS#1,
// 1.2.840.113549.1.1.1.
var oidRsaEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}

// pkcs8Codec wraps the PKCS#1 private key encoding in the PKCS#8
// PrivateKeyInfo envelope:
//
//	PrivateKeyInfo ::= SEQUENCE {
//	    version             INTEGER,  -- 0
//	    privateKeyAlgorithm AlgorithmIdentifier,
//	    privateKey          OCTET STRING }
//
// The format holds private keys only; public halves travel as
// SubjectPublicKeyInfo.
type pkcs8Codec struct {
	inner keys.Codec
}

// NewPkcs8Codec returns the codec for PKCS#8 PrivateKeyInfo blobs.
func NewPkcs8Codec() keys.Codec {
	return &pkcs8Codec{inner: NewPkcs1Codec()}
}

func (c *pkcs8Codec) Format() keys.BlobFormat {
	return keys.FormatPkcs8
}

// DecodePublic always fails: PKCS#8 carries no public-only shape.
func (c *pkcs8Codec) DecodePublic(blob []byte) (keys.Parameters, error) {
	return keys.Parameters{}, fmt.Errorf("%w: PKCS#8 holds private keys only", keys.ErrUnsupportedAlgorithm)
}

// DecodePrivate unwraps the PrivateKeyInfo envelope and delegates the inner
// OCTET STRING to the PKCS#1 codec. A privateKeyAlgorithm other than
// rsaEncryption fails with ErrUnsupportedAlgorithm.
func (c *pkcs8Codec) DecodePrivate(blob []byte) (keys.Parameters, error) {
	if err := checkOuterTLV(blob, derSequenceTag); err != nil {
		return keys.Parameters{}, err
	}

	input := cryptobyte.String(blob)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return keys.Parameters{}, fmt.Errorf("%w: bad PrivateKeyInfo SEQUENCE", keys.ErrMalformedEncoding)
	}

	version, err := readUnsignedInteger(&seq, "version")
	if err != nil {
		return keys.Parameters{}, err
	}
	if len(version) != 1 || version[0] != 0 {
		return keys.Parameters{}, fmt.Errorf("%w: unsupported PrivateKeyInfo version % x", keys.ErrMalformedEncoding, version)
	}

	if err := readRsaAlgorithmIdentifier(&seq); err != nil {
		return keys.Parameters{}, err
	}

	var keyOctets cryptobyte.String
	if !seq.ReadASN1(&keyOctets, cbasn1.OCTET_STRING) {
		return keys.Parameters{}, fmt.Errorf("%w: bad privateKey OCTET STRING", keys.ErrMalformedEncoding)
	}
	// Optional attributes ([0] IMPLICIT) may trail the key; skip them.
	if !seq.Empty() {
		var attrs cryptobyte.String
		if !seq.ReadASN1(&attrs, cbasn1.Tag(0).ContextSpecific().Constructed()) {
			return keys.Parameters{}, fmt.Errorf("%w: unexpected content after privateKey", keys.ErrMalformedEncoding)
		}
	}
	if err := checkEmpty(seq, "PrivateKeyInfo"); err != nil {
		return keys.Parameters{}, err
	}

	return c.inner.DecodePrivate(keyOctets)
}

// EncodePublic always fails; see DecodePublic.
func (c *pkcs8Codec) EncodePublic(params keys.Parameters) ([]byte, error) {
	return nil, fmt.Errorf("%w: PKCS#8 holds private keys only", keys.ErrUnsupportedAlgorithm)
}

// EncodePrivate wraps the PKCS#1 private encoding in a PrivateKeyInfo
// envelope.
func (c *pkcs8Codec) EncodePrivate(params keys.Parameters) ([]byte, error) {
	pkcs1, err := c.inner.EncodePrivate(params)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		addUnsignedInteger(seq, []byte{0}) // version
		addRsaAlgorithmIdentifier(seq)
		seq.AddASN1(cbasn1.OCTET_STRING, func(octets *cryptobyte.Builder) {
			octets.AddBytes(pkcs1)
		})
	})
	return b.Bytes()
}

// readRsaAlgorithmIdentifier consumes an AlgorithmIdentifier SEQUENCE and
// verifies it names rsaEncryption. The NULL parameters field is accepted
// present or absent.
func readRsaAlgorithmIdentifier(seq *cryptobyte.String) error {
	var alg cryptobyte.String
	if !seq.ReadASN1(&alg, cbasn1.SEQUENCE) {
		return fmt.Errorf("%w: bad AlgorithmIdentifier", keys.ErrMalformedEncoding)
	}

	var oid asn1.ObjectIdentifier
	if !alg.ReadASN1ObjectIdentifier(&oid) {
		return fmt.Errorf("%w: bad algorithm OID", keys.ErrMalformedEncoding)
	}
	if !oid.Equal(oidRsaEncryption) {
		return fmt.Errorf("%w: algorithm OID %v is not rsaEncryption", keys.ErrUnsupportedAlgorithm, oid)
	}

	if !alg.Empty() {
		var null cryptobyte.String
		if !alg.ReadASN1(&null, cbasn1.NULL) || len(null) != 0 {
			return fmt.Errorf("%w: bad AlgorithmIdentifier parameters", keys.ErrMalformedEncoding)
		}
	}
	return checkEmpty(alg, "AlgorithmIdentifier")
}

// addRsaAlgorithmIdentifier writes the rsaEncryption AlgorithmIdentifier with
// its required NULL parameters.
func addRsaAlgorithmIdentifier(b *cryptobyte.Builder) {
	b.AddASN1(cbasn1.SEQUENCE, func(alg *cryptobyte.Builder) {
		alg.AddASN1ObjectIdentifier(oidRsaEncryption)
		alg.AddASN1NULL()
	})
}
