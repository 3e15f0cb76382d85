package codec

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// derSequenceTag is the outer tag every DER key structure opens with.
const derSequenceTag = 0x30

// pkcs1Codec reads and writes the raw DER RSAPublicKey and RSAPrivateKey
// structures from PKCS#1:
//
//	RSAPublicKey ::= SEQUENCE { modulus INTEGER, publicExponent INTEGER }
//
//	RSAPrivateKey ::= SEQUENCE {
//	    version           INTEGER,  -- 0 for two-prime keys
//	    modulus           INTEGER,
//	    publicExponent    INTEGER,
//	    privateExponent   INTEGER,
//	    prime1            INTEGER,
//	    prime2            INTEGER,
//	    exponent1         INTEGER,
//	    exponent2         INTEGER,
//	    coefficient       INTEGER }
type pkcs1Codec struct{}

// NewPkcs1Codec returns the codec for raw PKCS#1 DER blobs.
func NewPkcs1Codec() keys.Codec {
	return &pkcs1Codec{}
}

func (c *pkcs1Codec) Format() keys.BlobFormat {
	return keys.FormatPkcs1
}

// DecodePublic parses a DER RSAPublicKey.
func (c *pkcs1Codec) DecodePublic(blob []byte) (keys.Parameters, error) {
	if err := checkOuterTLV(blob, derSequenceTag); err != nil {
		return keys.Parameters{}, err
	}

	input := cryptobyte.String(blob)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return keys.Parameters{}, fmt.Errorf("%w: bad RSAPublicKey SEQUENCE", keys.ErrMalformedEncoding)
	}

	var params keys.Parameters
	var err error
	if params.Modulus, err = readUnsignedInteger(&seq, "modulus"); err != nil {
		return keys.Parameters{}, err
	}
	if params.PublicExponent, err = readUnsignedInteger(&seq, "publicExponent"); err != nil {
		return keys.Parameters{}, err
	}
	if err := checkEmpty(seq, "RSAPublicKey"); err != nil {
		return keys.Parameters{}, err
	}
	return params, nil
}

// DecodePrivate parses a DER RSAPrivateKey. Only version 0 (two-prime) keys
// are accepted.
func (c *pkcs1Codec) DecodePrivate(blob []byte) (keys.Parameters, error) {
	if err := checkOuterTLV(blob, derSequenceTag); err != nil {
		return keys.Parameters{}, err
	}

	input := cryptobyte.String(blob)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return keys.Parameters{}, fmt.Errorf("%w: bad RSAPrivateKey SEQUENCE", keys.ErrMalformedEncoding)
	}

	version, err := readUnsignedInteger(&seq, "version")
	if err != nil {
		return keys.Parameters{}, err
	}
	if len(version) != 1 || version[0] != 0 {
		return keys.Parameters{}, fmt.Errorf("%w: unsupported RSAPrivateKey version % x", keys.ErrMalformedEncoding, version)
	}

	var params keys.Parameters
	fields := []struct {
		name string
		dst  *[]byte
	}{
		{"modulus", &params.Modulus},
		{"publicExponent", &params.PublicExponent},
		{"privateExponent", &params.PrivateExponent},
		{"prime1", &params.PrimeP},
		{"prime2", &params.PrimeQ},
		{"exponent1", &params.ExponentDP},
		{"exponent2", &params.ExponentDQ},
		{"coefficient", &params.CoefficientQInv},
	}
	for _, f := range fields {
		if *f.dst, err = readUnsignedInteger(&seq, f.name); err != nil {
			return keys.Parameters{}, err
		}
	}
	if err := checkEmpty(seq, "RSAPrivateKey"); err != nil {
		return keys.Parameters{}, err
	}
	return params, nil
}

// EncodePublic serializes the public fields as a DER RSAPublicKey.
func (c *pkcs1Codec) EncodePublic(params keys.Parameters) ([]byte, error) {
	if !params.HasPublicKey() {
		return nil, fmt.Errorf("%w: missing modulus or public exponent", keys.ErrIncompleteKeyMaterial)
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		addUnsignedInteger(seq, params.Modulus)
		addUnsignedInteger(seq, params.PublicExponent)
	})
	return b.Bytes()
}

// EncodePrivate serializes a full private parameter set as a DER
// RSAPrivateKey. The structure carries the CRT fields, so a non-CRT private
// key cannot be written to it.
func (c *pkcs1Codec) EncodePrivate(params keys.Parameters) ([]byte, error) {
	if !params.HasPrivateKey() {
		return nil, keys.ErrNotAPrivateKey
	}
	if !params.HasFullPrivateKeyData() {
		return nil, fmt.Errorf("%w: PKCS#1 private keys require the CRT fields", keys.ErrIncompleteKeyMaterial)
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		addUnsignedInteger(seq, []byte{0}) // version: two-prime
		addUnsignedInteger(seq, params.Modulus)
		addUnsignedInteger(seq, params.PublicExponent)
		addUnsignedInteger(seq, params.PrivateExponent)
		addUnsignedInteger(seq, params.PrimeP)
		addUnsignedInteger(seq, params.PrimeQ)
		addUnsignedInteger(seq, params.ExponentDP)
		addUnsignedInteger(seq, params.ExponentDQ)
		addUnsignedInteger(seq, params.CoefficientQInv)
	})
	return b.Bytes()
}
