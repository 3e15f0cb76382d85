//go:build unit
// +build unit

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

func repeatByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestNegotiateCapiWidensToSlotLengths(t *testing.T) {
	params := testParameters(t)
	out, err := NegotiateCapi(&params)
	require.NoError(t, err)

	assert.True(t, IsCapiCompatible(&out))
	assert.Equal(t, 256, len(out.Modulus))
	assert.Equal(t, 256, len(out.PrivateExponent))
	assert.Equal(t, 128, len(out.PrimeP))
	assert.Equal(t, 128, len(out.PrimeQ))
	assert.True(t, params.Equal(&out), "negotiation must not change values")
}

func TestNegotiateCapiUnevenPrimeLengths(t *testing.T) {
	// A 255-byte modulus whose larger prime needs a full 128-byte slot. The
	// half-length layout forces the modulus out to 256 bytes.
	params := keys.Parameters{
		Modulus:         repeatByte(0xab, 255),
		PublicExponent:  []byte{0x01, 0x00, 0x01},
		PrivateExponent: repeatByte(0xcd, 255),
		PrimeP:          repeatByte(0x11, 127),
		PrimeQ:          repeatByte(0x22, 128),
		ExponentDP:      repeatByte(0x33, 127),
		ExponentDQ:      repeatByte(0x44, 127),
		CoefficientQInv: repeatByte(0x55, 126),
	}
	require.False(t, IsCapiCompatible(&params))

	out, err := NegotiateCapi(&params)
	require.NoError(t, err)
	assert.Equal(t, 256, len(out.Modulus))
	assert.Equal(t, 128, len(out.PrimeP))
	assert.Equal(t, 128, len(out.PrimeQ))
	assert.True(t, params.Equal(&out))
	assert.True(t, IsCapiCompatible(&out))
}

func TestNegotiateCapiSmallKeyHitsFloor(t *testing.T) {
	params := keys.Parameters{
		Modulus:        repeatByte(0x99, 16),
		PublicExponent: []byte{0x03},
	}
	out, err := NegotiateCapi(&params)
	require.NoError(t, err)
	assert.Equal(t, minCapiModulusBytes, len(out.Modulus))
	assert.Equal(t, 0, bytesCompare(params.Modulus, out.Modulus))
}

func TestNegotiateCapiHardRejects(t *testing.T) {
	t.Run("wide public exponent", func(t *testing.T) {
		params := keys.Parameters{
			Modulus:        repeatByte(0xab, 256),
			PublicExponent: []byte{0x01, 0x00, 0x00, 0x00, 0x01},
		}
		_, err := NegotiateCapi(&params)
		assert.ErrorIs(t, err, keys.ErrIncompatibleKeySize)
	})

	t.Run("modulus beyond legacy maximum", func(t *testing.T) {
		params := keys.Parameters{
			Modulus:        repeatByte(0xab, maxCapiModulusBytes+1),
			PublicExponent: []byte{0x03},
		}
		_, err := NegotiateCapi(&params)
		assert.ErrorIs(t, err, keys.ErrIncompatibleKeySize)
	})

	t.Run("prime larger than any half slot", func(t *testing.T) {
		params := keys.Parameters{
			Modulus:        repeatByte(0xab, 256),
			PublicExponent: []byte{0x03},
			PrimeP:         repeatByte(0x11, maxCapiModulusBytes/2+1),
			PrimeQ:         repeatByte(0x22, 128),
		}
		_, err := NegotiateCapi(&params)
		assert.ErrorIs(t, err, keys.ErrIncompatibleKeySize)
	})
}

func TestIsCapiCompatible(t *testing.T) {
	tests := []struct {
		name   string
		params keys.Parameters
		want   bool
	}{
		{
			name: "exact slot widths",
			params: keys.Parameters{
				Modulus:        repeatByte(0xab, 256),
				PublicExponent: []byte{0x01, 0x00, 0x01},
			},
			want: true,
		},
		{
			name: "odd modulus length",
			params: keys.Parameters{
				Modulus:        repeatByte(0xab, 255),
				PublicExponent: []byte{0x03},
			},
			want: false,
		},
		{
			name: "below minimum",
			params: keys.Parameters{
				Modulus:        repeatByte(0xab, minCapiModulusBytes-2),
				PublicExponent: []byte{0x03},
			},
			want: false,
		},
		{
			name: "wide exponent",
			params: keys.Parameters{
				Modulus:        repeatByte(0xab, 256),
				PublicExponent: repeatByte(0x01, 5),
			},
			want: false,
		},
		{
			name: "prime overflows half slot",
			params: keys.Parameters{
				Modulus:        repeatByte(0xab, 256),
				PublicExponent: []byte{0x03},
				PrimeP:         repeatByte(0x11, 129),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCapiCompatible(&tt.params))
		})
	}
}
