package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

// The legacy CAPI key blob is a flat little-endian layout:
//
//	BLOBHEADER { bType, bVersion, reserved uint16, aiKeyAlg uint32 }
//	RSAPUBKEY  { magic uint32, bitlen uint32, pubexp uint32 }
//	modulus    [bitlen/8]byte          -- least significant byte first
//
// and, for private blobs, six further fields:
//
//	prime1, prime2, exponent1, exponent2, coefficient  [bitlen/16]byte each
//	privateExponent                                    [bitlen/8]byte
//
// Every integer field is stored least-significant-byte first, the reverse of
// the DER convention. The advertised bitlen drives all slicing, so encode
// derives it from the encoded modulus width, which the negotiator has already
// squared with the half-length fields.
const (
	capiBlobTypePublic  = 0x06
	capiBlobTypePrivate = 0x07
	capiBlobVersion     = 0x02
	capiAlgRsaKeyX      = 0x0000a400 // CALG_RSA_KEYX

	capiMagicPublic  = 0x31415352 // "RSA1"
	capiMagicPrivate = 0x32415352 // "RSA2"

	capiHeaderLength = 8 + 12
)

type capiCodec struct{}

// NewCapiCodec returns the codec for legacy CAPI key blobs.
func NewCapiCodec() keys.Codec {
	return &capiCodec{}
}

func (c *capiCodec) Format() keys.BlobFormat {
	return keys.FormatCapi
}

// DecodePublic parses a PUBLICKEYBLOB.
func (c *capiCodec) DecodePublic(blob []byte) (keys.Parameters, error) {
	consumer := newByteConsumer(blob)
	byteLen, exponent, err := readCapiHeader(consumer, capiBlobTypePublic, capiMagicPublic)
	if err != nil {
		return keys.Parameters{}, err
	}

	modulus := consumer.bytesLE(byteLen)
	if err := consumer.finish(); err != nil {
		return keys.Parameters{}, err
	}

	return keys.Parameters{
		Modulus:        modulus,
		PublicExponent: exponent,
	}, nil
}

// DecodePrivate parses a PRIVATEKEYBLOB.
func (c *capiCodec) DecodePrivate(blob []byte) (keys.Parameters, error) {
	consumer := newByteConsumer(blob)
	byteLen, exponent, err := readCapiHeader(consumer, capiBlobTypePrivate, capiMagicPrivate)
	if err != nil {
		return keys.Parameters{}, err
	}
	if byteLen%2 != 0 {
		return keys.Parameters{}, fmt.Errorf("%w: private blob with odd %d-byte modulus", keys.ErrMalformedEncoding, byteLen)
	}
	halfLen := byteLen / 2

	params := keys.Parameters{
		PublicExponent:  exponent,
		Modulus:         consumer.bytesLE(byteLen),
		PrimeP:          consumer.bytesLE(halfLen),
		PrimeQ:          consumer.bytesLE(halfLen),
		ExponentDP:      consumer.bytesLE(halfLen),
		ExponentDQ:      consumer.bytesLE(halfLen),
		CoefficientQInv: consumer.bytesLE(halfLen),
		PrivateExponent: consumer.bytesLE(byteLen),
	}
	if err := consumer.finish(); err != nil {
		return keys.Parameters{}, err
	}
	return params, nil
}

// EncodePublic serializes a PUBLICKEYBLOB. The parameter set must already
// satisfy the negotiator's length constraints.
func (c *capiCodec) EncodePublic(params keys.Parameters) ([]byte, error) {
	if !params.HasPublicKey() {
		return nil, fmt.Errorf("%w: missing modulus or public exponent", keys.ErrIncompleteKeyMaterial)
	}
	if !IsCapiCompatible(&params) {
		return nil, fmt.Errorf("%w: parameter set needs negotiation before legacy export", keys.ErrIncompatibleKeySize)
	}
	byteLen := len(params.Modulus)

	var buf bytes.Buffer
	writeCapiHeader(&buf, capiBlobTypePublic, capiMagicPublic, byteLen, params.PublicExponent)
	writeFieldLE(&buf, params.Modulus, byteLen)
	return buf.Bytes(), nil
}

// EncodePrivate serializes a PRIVATEKEYBLOB. The layout carries the CRT
// fields, so the set must hold full private key data and must already
// satisfy the negotiator's length constraints.
func (c *capiCodec) EncodePrivate(params keys.Parameters) ([]byte, error) {
	if !params.HasPrivateKey() {
		return nil, keys.ErrNotAPrivateKey
	}
	if !params.HasFullPrivateKeyData() {
		return nil, fmt.Errorf("%w: legacy private blobs require the CRT fields", keys.ErrIncompleteKeyMaterial)
	}
	if !IsCapiCompatible(&params) {
		return nil, fmt.Errorf("%w: parameter set needs negotiation before legacy export", keys.ErrIncompatibleKeySize)
	}
	byteLen := len(params.Modulus)
	halfLen := byteLen / 2

	var buf bytes.Buffer
	writeCapiHeader(&buf, capiBlobTypePrivate, capiMagicPrivate, byteLen, params.PublicExponent)
	writeFieldLE(&buf, params.Modulus, byteLen)
	writeFieldLE(&buf, params.PrimeP, halfLen)
	writeFieldLE(&buf, params.PrimeQ, halfLen)
	writeFieldLE(&buf, params.ExponentDP, halfLen)
	writeFieldLE(&buf, params.ExponentDQ, halfLen)
	writeFieldLE(&buf, params.CoefficientQInv, halfLen)
	writeFieldLE(&buf, params.PrivateExponent, byteLen)
	return buf.Bytes(), nil
}

// readCapiHeader consumes the BLOBHEADER and RSAPUBKEY structures, validating
// the type flag, version, algorithm and magic. It returns the modulus byte
// length and the public exponent.
func readCapiHeader(consumer *byteConsumer, wantType byte, wantMagic uint32) (int, []byte, error) {
	blobType := consumer.uint8()
	version := consumer.uint8()
	reserved := consumer.uint16()
	keyAlg := consumer.uint32()
	magic := consumer.uint32()
	bitLen := consumer.uint32()
	exponent := consumer.uint32()
	if err := consumer.pending(); err != nil {
		return 0, nil, err
	}

	if blobType != wantType {
		return 0, nil, fmt.Errorf("%w: blob type 0x%02x, want 0x%02x", keys.ErrMalformedEncoding, blobType, wantType)
	}
	if version != capiBlobVersion {
		return 0, nil, fmt.Errorf("%w: blob version 0x%02x", keys.ErrMalformedEncoding, version)
	}
	if reserved != 0 {
		return 0, nil, fmt.Errorf("%w: nonzero reserved field", keys.ErrMalformedEncoding)
	}
	if keyAlg != capiAlgRsaKeyX {
		return 0, nil, fmt.Errorf("%w: key algorithm 0x%08x", keys.ErrUnsupportedAlgorithm, keyAlg)
	}
	if magic != wantMagic {
		return 0, nil, fmt.Errorf("%w: magic 0x%08x, want 0x%08x", keys.ErrMalformedEncoding, magic, wantMagic)
	}
	if bitLen == 0 || bitLen%8 != 0 || bitLen/8 > maxCapiModulusBytes {
		return 0, nil, fmt.Errorf("%w: implausible bit length %d", keys.ErrMalformedEncoding, bitLen)
	}

	exponentBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(exponentBytes, exponent)
	return int(bitLen / 8), bigutil.TrimLeadingZeros(exponentBytes), nil
}

// writeCapiHeader writes the BLOBHEADER and RSAPUBKEY structures. The
// exponent has at most 4 significant bytes here; the negotiator rejected
// anything wider.
func writeCapiHeader(buf *bytes.Buffer, blobType byte, magic uint32, byteLen int, exponent []byte) {
	exponentPadded, _ := bigutil.NormalizeLength(exponent, 4)

	buf.WriteByte(blobType)
	buf.WriteByte(capiBlobVersion)
	var scratch [4]byte
	binary.LittleEndian.PutUint16(scratch[:2], 0)
	buf.Write(scratch[:2])
	binary.LittleEndian.PutUint32(scratch[:], capiAlgRsaKeyX)
	buf.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], magic)
	buf.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], uint32(byteLen*8))
	buf.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], binary.BigEndian.Uint32(exponentPadded))
	buf.Write(scratch[:])
}

// writeFieldLE writes an unsigned big-endian value into a fixed-width
// little-endian slot.
func writeFieldLE(buf *bytes.Buffer, value []byte, width int) {
	padded, _ := bigutil.NormalizeLength(value, width)
	buf.Write(bigutil.Reverse(padded))
}

// byteConsumer slices fixed-width fields off a blob, tracking the first
// overrun instead of failing at every call site.
type byteConsumer struct {
	rest []byte
	err  error
}

func newByteConsumer(blob []byte) *byteConsumer {
	return &byteConsumer{rest: blob}
}

func (c *byteConsumer) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if len(c.rest) < n {
		c.err = fmt.Errorf("%w: need %d more bytes, have %d", keys.ErrTruncatedInput, n, len(c.rest))
		return nil
	}
	out := c.rest[:n]
	c.rest = c.rest[n:]
	return out
}

func (c *byteConsumer) uint8() byte {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *byteConsumer) uint16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *byteConsumer) uint32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// bytesLE reads a little-endian integer field and returns it as an unsigned
// big-endian magnitude.
func (c *byteConsumer) bytesLE(n int) []byte {
	b := c.take(n)
	if b == nil {
		return nil
	}
	return bigutil.TrimLeadingZeros(bigutil.Reverse(b))
}

// pending reports any overrun recorded so far.
func (c *byteConsumer) pending() error {
	return c.err
}

// finish fails when the blob was shorter than its fields or carries bytes
// beyond the last one.
func (c *byteConsumer) finish() error {
	if c.err != nil {
		return c.err
	}
	if len(c.rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes after final field", keys.ErrMalformedEncoding, len(c.rest))
	}
	return nil
}
