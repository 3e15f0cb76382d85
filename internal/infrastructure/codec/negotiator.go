package codec

import (
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

// The legacy CAPI blob slices its integer fields from the advertised bit
// length, so a parameter set must present its fields at exact widths before
// it can be written: the modulus byte length is even and at least the CAPI
// minimum, each prime and CRT field fits half that length, and the public
// exponent fits the blob's fixed 4-byte field.
const (
	// minCapiModulusBytes is the smallest modulus the legacy blob accepts,
	// 384 bits.
	minCapiModulusBytes = 48

	// maxCapiModulusBytes caps negotiation at 16384 bits.
	maxCapiModulusBytes = 2048

	// capiExponentBytes is the width of the blob's public exponent field.
	capiExponentBytes = 4
)

// IsCapiCompatible reports whether params satisfies the legacy blob's length
// constraints as encoded, without mutating anything. A set that fails here
// may still be exportable after NegotiateCapi.
func IsCapiCompatible(params *keys.Parameters) bool {
	byteLen := len(params.Modulus)
	if byteLen%2 != 0 || byteLen < minCapiModulusBytes || byteLen > maxCapiModulusBytes {
		return false
	}
	if bigutil.MinimalByteLength(params.Modulus) > byteLen {
		return false
	}
	if bigutil.MinimalByteLength(params.PublicExponent) > capiExponentBytes {
		return false
	}

	halfLen := byteLen / 2
	for _, field := range [][]byte{
		params.PrimeP, params.PrimeQ,
		params.ExponentDP, params.ExponentDQ, params.CoefficientQInv,
	} {
		if len(field) > 0 && bigutil.MinimalByteLength(field) > halfLen {
			return false
		}
	}
	if len(params.PrivateExponent) > 0 && bigutil.MinimalByteLength(params.PrivateExponent) > byteLen {
		return false
	}
	return true
}

// NegotiateCapi produces an equal-valued parameter set satisfying the legacy
// blob's constraints by widening the target modulus byte length to the next
// value at which every prime and CRT field sits in an exact half-length slot.
// Field values are never changed, only their encoded widths. When no widening
// can help, e.g. a public exponent beyond 4 bytes, it fails with
// ErrIncompatibleKeySize; that is a hard reject, not a retry.
func NegotiateCapi(params *keys.Parameters) (keys.Parameters, error) {
	if expLen := bigutil.MinimalByteLength(params.PublicExponent); expLen > capiExponentBytes {
		return keys.Parameters{}, fmt.Errorf("%w: public exponent needs %d bytes, legacy field holds %d",
			keys.ErrIncompatibleKeySize, expLen, capiExponentBytes)
	}

	target := bigutil.MinimalByteLength(params.Modulus)
	if target < minCapiModulusBytes {
		target = minCapiModulusBytes
	}
	for _, field := range [][]byte{
		params.PrimeP, params.PrimeQ,
		params.ExponentDP, params.ExponentDQ, params.CoefficientQInv,
	} {
		if need := 2 * bigutil.MinimalByteLength(field); need > target {
			target = need
		}
	}
	if target%2 != 0 {
		target++
	}
	if target > maxCapiModulusBytes {
		return keys.Parameters{}, fmt.Errorf("%w: %d-byte modulus exceeds the legacy maximum of %d",
			keys.ErrIncompatibleKeySize, target, maxCapiModulusBytes)
	}

	out, err := params.NormalizeFieldLengths(target)
	if err != nil {
		return keys.Parameters{}, err
	}
	return out, nil
}
