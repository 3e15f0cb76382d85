// Package bigutil provides arithmetic over unsigned big-endian byte sequences.
//
// RSA key material travels through this codebase as raw magnitude bytes rather
// than math/big values so that codecs can control encoded lengths exactly.
// This package is the single place where those byte sequences are interpreted
// numerically.
package bigutil

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNotInvertible is returned by ModInverse when gcd(a, m) != 1.
	ErrNotInvertible = errors.New("bigutil: value is not invertible modulo the given modulus")

	// ErrValueTooLarge is returned by NormalizeLength when a value's minimal
	// encoding does not fit the requested byte length.
	ErrValueTooLarge = errors.New("bigutil: value does not fit requested byte length")
)

var bigOne = big.NewInt(1)

// Compare compares two unsigned big-endian values by magnitude, ignoring
// leading zero bytes. It returns -1, 0 or 1.
func Compare(a, b []byte) int {
	a = TrimLeadingZeros(a)
	b = TrimLeadingZeros(b)

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}

	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ModInverse computes x such that a*x ≡ 1 (mod m), returned as an unsigned
// big-endian value. It returns ErrNotInvertible when a has no inverse in the
// ring of integers modulo m.
func ModInverse(a, m []byte) ([]byte, error) {
	aInt := new(big.Int).SetBytes(a)
	mInt := new(big.Int).SetBytes(m)

	if mInt.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero modulus", ErrNotInvertible)
	}

	// ModInverse returns nil when gcd(a, m) != 1
	inv := new(big.Int).ModInverse(aInt, mInt)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv.Bytes(), nil
}

// Mod computes the remainder a mod m with 0 <= r < m, returned as an unsigned
// big-endian value.
func Mod(a, m []byte) []byte {
	aInt := new(big.Int).SetBytes(a)
	mInt := new(big.Int).SetBytes(m)
	return new(big.Int).Mod(aInt, mInt).Bytes()
}

// Mul returns the product a*b as an unsigned big-endian value.
func Mul(a, b []byte) []byte {
	aInt := new(big.Int).SetBytes(a)
	bInt := new(big.Int).SetBytes(b)
	return new(big.Int).Mul(aInt, bInt).Bytes()
}

// Sub returns a-b as an unsigned big-endian value. The caller must ensure
// a >= b; the call panics on underflow since negative magnitudes have no
// byte representation here.
func Sub(a, b []byte) []byte {
	aInt := new(big.Int).SetBytes(a)
	bInt := new(big.Int).SetBytes(b)
	r := new(big.Int).Sub(aInt, bInt)
	if r.Sign() < 0 {
		panic("bigutil: subtraction underflow")
	}
	return r.Bytes()
}

// DecrementedBy1 returns value-1. Used for the p-1 and q-1 terms of the CRT
// derivations.
func DecrementedBy1(value []byte) []byte {
	v := new(big.Int).SetBytes(value)
	return v.Sub(v, bigOne).Bytes()
}

// Lcm returns the least common multiple of a and b as an unsigned big-endian
// value. Lcm of anything with zero is zero.
func Lcm(a, b []byte) []byte {
	aInt := new(big.Int).SetBytes(a)
	bInt := new(big.Int).SetBytes(b)
	if aInt.Sign() == 0 || bInt.Sign() == 0 {
		return nil
	}
	gcd := new(big.Int).GCD(nil, nil, aInt, bInt)
	lcm := new(big.Int).Mul(aInt, bInt)
	lcm.Div(lcm, gcd)
	return lcm.Bytes()
}

// NormalizeLength re-encodes value to occupy exactly targetByteLength bytes,
// left-padding with zero bytes or dropping leading zero bytes as needed. The
// numeric value is never changed: if the minimal encoding is already longer
// than targetByteLength, ErrValueTooLarge is returned.
func NormalizeLength(value []byte, targetByteLength int) ([]byte, error) {
	minimal := TrimLeadingZeros(value)
	if len(minimal) > targetByteLength {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrValueTooLarge, len(minimal), targetByteLength)
	}

	out := make([]byte, targetByteLength)
	copy(out[targetByteLength-len(minimal):], minimal)
	return out, nil
}

// TrimLeadingZeros returns the minimal encoding of value. The zero value is
// represented as an empty slice.
func TrimLeadingZeros(value []byte) []byte {
	i := 0
	for i < len(value) && value[i] == 0 {
		i++
	}
	return value[i:]
}

// MinimalByteLength reports how many bytes the minimal encoding of value
// occupies.
func MinimalByteLength(value []byte) int {
	return len(TrimLeadingZeros(value))
}

// Reverse returns a copy of b with its byte order flipped. The legacy CAPI
// blob stores integer fields least-significant-byte first.
func Reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
