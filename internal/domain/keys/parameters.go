package keys

import (
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

// Parameters is the canonical in-memory representation of an RSA key. Every
// field is an unsigned big-endian magnitude; a nil or empty slice means the
// field is absent. Codecs decode into this shape and encode out of it, and
// the completion logic enriches it.
//
// Parameters values are treated as immutable once completed: enrichment and
// length normalization return fresh values instead of mutating in place.
type Parameters struct {
	// Modulus (n) and PublicExponent (e) are present for any valid key.
	Modulus        []byte
	PublicExponent []byte

	// PrivateExponent (d) is present only for private keys.
	PrivateExponent []byte

	// The CRT representation: the two factors of the modulus, the reduced
	// private exponents and the inverse of PrimeQ modulo PrimeP.
	PrimeP          []byte
	PrimeQ          []byte
	ExponentDP      []byte
	ExponentDQ      []byte
	CoefficientQInv []byte
}

// HasPublicKey reports whether the modulus and public exponent are present.
func (p Parameters) HasPublicKey() bool {
	return len(p.Modulus) > 0 && len(p.PublicExponent) > 0
}

// HasPrivateKey reports whether any private key material is present, in
// either plain-exponent or CRT form.
func (p Parameters) HasPrivateKey() bool {
	return len(p.PrivateExponent) > 0 || p.HasCrtData()
}

// HasCrtData reports whether the five CRT fields are all present. A set can
// be CRT-capable without carrying the plain private exponent.
func (p Parameters) HasCrtData() bool {
	return len(p.PrimeP) > 0 && len(p.PrimeQ) > 0 &&
		len(p.ExponentDP) > 0 && len(p.ExponentDQ) > 0 &&
		len(p.CoefficientQInv) > 0
}

// HasFullPrivateKeyData reports whether every private field is populated:
// the plain private exponent plus the full CRT representation. Only such a
// set can be written to CRT-requiring encodings like PKCS#1 private keys or
// the legacy CAPI private blob.
func (p Parameters) HasFullPrivateKeyData() bool {
	return len(p.PrivateExponent) > 0 && p.HasCrtData()
}

// Clone returns a deep copy of the parameter set.
func (p Parameters) Clone() Parameters {
	return Parameters{
		Modulus:         cloneBytes(p.Modulus),
		PublicExponent:  cloneBytes(p.PublicExponent),
		PrivateExponent: cloneBytes(p.PrivateExponent),
		PrimeP:          cloneBytes(p.PrimeP),
		PrimeQ:          cloneBytes(p.PrimeQ),
		ExponentDP:      cloneBytes(p.ExponentDP),
		ExponentDQ:      cloneBytes(p.ExponentDQ),
		CoefficientQInv: cloneBytes(p.CoefficientQInv),
	}
}

// Equal reports whether two parameter sets are numerically identical field
// for field. Encoded byte lengths are ignored, so a set and its
// length-normalized counterpart compare equal.
func (p Parameters) Equal(other *Parameters) bool {
	return bigutil.Compare(p.Modulus, other.Modulus) == 0 &&
		bigutil.Compare(p.PublicExponent, other.PublicExponent) == 0 &&
		bigutil.Compare(p.PrivateExponent, other.PrivateExponent) == 0 &&
		bigutil.Compare(p.PrimeP, other.PrimeP) == 0 &&
		bigutil.Compare(p.PrimeQ, other.PrimeQ) == 0 &&
		bigutil.Compare(p.ExponentDP, other.ExponentDP) == 0 &&
		bigutil.Compare(p.ExponentDQ, other.ExponentDQ) == 0 &&
		bigutil.Compare(p.CoefficientQInv, other.CoefficientQInv) == 0
}

// ModulusByteLength reports the minimal encoded length of the modulus.
func (p Parameters) ModulusByteLength() int {
	return bigutil.MinimalByteLength(p.Modulus)
}

// ModulusBitLength reports the bit length of the modulus, i.e. the nominal
// key size.
func (p Parameters) ModulusBitLength() int {
	n := bigutil.TrimLeadingZeros(p.Modulus)
	if len(n) == 0 {
		return 0
	}
	bits := (len(n) - 1) * 8
	for v := n[0]; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

// NormalizeFieldLengths re-encodes every field of the set against the given
// modulus byte length: the modulus and private exponent occupy the full
// length, the primes and the CRT fields each occupy exactly half. Numeric
// values are unchanged. The half-length convention requires an even modulus
// length; an odd one, or any field too large for its slot, fails with
// ErrIncompatibleKeySize.
func (p Parameters) NormalizeFieldLengths(modulusByteLength int) (Parameters, error) {
	if modulusByteLength%2 != 0 {
		return Parameters{}, fmt.Errorf("%w: modulus length %d is odd", ErrIncompatibleKeySize, modulusByteLength)
	}
	halfLength := modulusByteLength / 2

	out := Parameters{}
	var err error

	if out.Modulus, err = normalizeField("modulus", p.Modulus, modulusByteLength); err != nil {
		return Parameters{}, err
	}
	// The public exponent keeps its minimal encoding; only the CAPI codec
	// imposes a width on it, and it does so itself.
	out.PublicExponent = bigutil.TrimLeadingZeros(cloneBytes(p.PublicExponent))

	if len(p.PrivateExponent) > 0 {
		if out.PrivateExponent, err = normalizeField("private exponent", p.PrivateExponent, modulusByteLength); err != nil {
			return Parameters{}, err
		}
	}

	halfFields := []struct {
		name string
		src  []byte
		dst  *[]byte
	}{
		{"prime p", p.PrimeP, &out.PrimeP},
		{"prime q", p.PrimeQ, &out.PrimeQ},
		{"exponent dP", p.ExponentDP, &out.ExponentDP},
		{"exponent dQ", p.ExponentDQ, &out.ExponentDQ},
		{"coefficient qInv", p.CoefficientQInv, &out.CoefficientQInv},
	}
	for _, f := range halfFields {
		if len(f.src) == 0 {
			continue
		}
		if *f.dst, err = normalizeField(f.name, f.src, halfLength); err != nil {
			return Parameters{}, err
		}
	}
	return out, nil
}

func normalizeField(name string, value []byte, length int) ([]byte, error) {
	out, err := bigutil.NormalizeLength(value, length)
	if err != nil {
		return nil, fmt.Errorf("%w: %s needs %d bytes, slot is %d",
			ErrIncompatibleKeySize, name, bigutil.MinimalByteLength(value), length)
	}
	return out, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
