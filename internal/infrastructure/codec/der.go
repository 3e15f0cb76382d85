package codec

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// maxOuterContentLength bounds the declared content length of an outer DER
// structure. No supported key blob comes anywhere near it.
const maxOuterContentLength = 1 << 30

// checkOuterTLV inspects the outermost tag-length-value of a DER blob before
// cryptobyte takes over, so that short buffers and corrupted tags produce the
// right error class: a buffer shorter than its declared length is truncated
// input, everything else structural is a malformed encoding.
func checkOuterTLV(blob []byte, wantTag byte) error {
	if len(blob) == 0 {
		return fmt.Errorf("%w: empty buffer", keys.ErrTruncatedInput)
	}
	if blob[0] != wantTag {
		return fmt.Errorf("%w: expected tag 0x%02x, found 0x%02x", keys.ErrMalformedEncoding, wantTag, blob[0])
	}
	if len(blob) < 2 {
		return fmt.Errorf("%w: missing length octet", keys.ErrTruncatedInput)
	}

	var contentLen, headerLen int
	first := blob[1]
	switch {
	case first < 0x80:
		contentLen = int(first)
		headerLen = 2
	case first == 0x80:
		// Indefinite lengths are BER, never DER.
		return fmt.Errorf("%w: indefinite length", keys.ErrMalformedEncoding)
	default:
		numBytes := int(first & 0x7f)
		if numBytes > 4 {
			return fmt.Errorf("%w: length of length %d", keys.ErrMalformedEncoding, numBytes)
		}
		if len(blob) < 2+numBytes {
			return fmt.Errorf("%w: long-form length cut short", keys.ErrTruncatedInput)
		}
		// Accumulate in 64 bits: a 4-byte length can overflow int on 32-bit
		// platforms. Lengths beyond the cap are still just truncation.
		var declared int64
		for _, b := range blob[2 : 2+numBytes] {
			declared = declared<<8 | int64(b)
		}
		if numBytes > 1 && blob[2] == 0 {
			return fmt.Errorf("%w: non-minimal length encoding", keys.ErrMalformedEncoding)
		}
		if declared > maxOuterContentLength {
			return fmt.Errorf("%w: declared %d content bytes, have %d",
				keys.ErrTruncatedInput, declared, len(blob)-2-numBytes)
		}
		contentLen = int(declared)
		if contentLen < 0x80 {
			return fmt.Errorf("%w: long-form length for short value", keys.ErrMalformedEncoding)
		}
		headerLen = 2 + numBytes
	}

	switch {
	case len(blob) < headerLen+contentLen:
		return fmt.Errorf("%w: declared %d content bytes, have %d",
			keys.ErrTruncatedInput, contentLen, len(blob)-headerLen)
	case len(blob) > headerLen+contentLen:
		return fmt.Errorf("%w: %d trailing bytes after outer structure",
			keys.ErrMalformedEncoding, len(blob)-headerLen-contentLen)
	}
	return nil
}

// readUnsignedInteger reads one DER INTEGER from s and returns its unsigned
// magnitude. Negative values and non-canonical sign padding are rejected: a
// positive integer carries a leading 0x00 exactly when its top bit would
// otherwise read as a sign bit.
func readUnsignedInteger(s *cryptobyte.String, field string) ([]byte, error) {
	var raw cryptobyte.String
	if !s.ReadASN1(&raw, cbasn1.INTEGER) {
		return nil, fmt.Errorf("%w: bad INTEGER for %s", keys.ErrMalformedEncoding, field)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty INTEGER for %s", keys.ErrMalformedEncoding, field)
	}
	if raw[0]&0x80 != 0 {
		return nil, fmt.Errorf("%w: negative INTEGER for %s", keys.ErrMalformedEncoding, field)
	}
	if len(raw) > 1 && raw[0] == 0 && raw[1]&0x80 == 0 {
		return nil, fmt.Errorf("%w: non-minimal INTEGER padding for %s", keys.ErrMalformedEncoding, field)
	}
	if len(raw) > 1 && raw[0] == 0 {
		raw = raw[1:]
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// addUnsignedInteger writes value as a DER INTEGER, inserting the leading
// 0x00 sign octet when the most significant bit of the natural encoding is
// set.
func addUnsignedInteger(b *cryptobyte.Builder, value []byte) {
	for len(value) > 1 && value[0] == 0 {
		value = value[1:]
	}
	b.AddASN1(cbasn1.INTEGER, func(child *cryptobyte.Builder) {
		if len(value) == 0 {
			child.AddUint8(0)
			return
		}
		if value[0]&0x80 != 0 {
			child.AddUint8(0)
		}
		child.AddBytes(value)
	})
}

// checkEmpty fails with a malformed-encoding error when a structure carries
// bytes beyond its last expected field.
func checkEmpty(s cryptobyte.String, structure string) error {
	if !s.Empty() {
		return fmt.Errorf("%w: %d trailing bytes inside %s", keys.ErrMalformedEncoding, len(s), structure)
	}
	return nil
}
