//go:build unit
// +build unit

package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

// A tiny textbook key pair: n = 11*13, e = 7, d = 43.
func tinyPrivateKey() Parameters {
	return Parameters{
		Modulus:         []byte{143},
		PublicExponent:  []byte{7},
		PrivateExponent: []byte{43},
		PrimeP:          []byte{11},
		PrimeQ:          []byte{13},
	}
}

func generatedPrivateKey(t *testing.T) Parameters {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	priv.Precompute()
	return Parameters{
		Modulus:         priv.N.Bytes(),
		PublicExponent:  big.NewInt(int64(priv.E)).Bytes(),
		PrivateExponent: priv.D.Bytes(),
		PrimeP:          priv.Primes[0].Bytes(),
		PrimeQ:          priv.Primes[1].Bytes(),
		ExponentDP:      priv.Precomputed.Dp.Bytes(),
		ExponentDQ:      priv.Precomputed.Dq.Bytes(),
		CoefficientQInv: priv.Precomputed.Qinv.Bytes(),
	}
}

func TestCompleteDerivesCrtFields(t *testing.T) {
	completed, err := Complete(tinyPrivateKey())
	require.NoError(t, err)

	assert.Equal(t, []byte{3}, completed.ExponentDP)   // 43 mod 10
	assert.Equal(t, []byte{7}, completed.ExponentDQ)   // 43 mod 12
	assert.Equal(t, []byte{6}, completed.CoefficientQInv) // 13^-1 mod 11
	assert.True(t, completed.HasFullPrivateKeyData())
}

func TestCompleteCrossCheckProperties(t *testing.T) {
	params := generatedPrivateKey(t)
	params.ExponentDP = nil
	params.ExponentDQ = nil
	params.CoefficientQInv = nil

	completed, err := Complete(params)
	require.NoError(t, err)
	require.True(t, completed.HasFullPrivateKeyData())

	pMinus1 := bigutil.DecrementedBy1(completed.PrimeP)
	qMinus1 := bigutil.DecrementedBy1(completed.PrimeQ)

	assert.Equal(t, 0, bigutil.Compare(bigutil.Mul(completed.PrimeP, completed.PrimeQ), completed.Modulus))
	assert.Equal(t, 0, bigutil.Compare(completed.ExponentDP, bigutil.Mod(completed.PrivateExponent, pMinus1)))
	assert.Equal(t, 0, bigutil.Compare(completed.ExponentDQ, bigutil.Mod(completed.PrivateExponent, qMinus1)))

	product := bigutil.Mod(bigutil.Mul(completed.CoefficientQInv, completed.PrimeQ), completed.PrimeP)
	assert.Equal(t, 0, bigutil.Compare(product, []byte{1}))
}

func TestCompleteIdempotent(t *testing.T) {
	once, err := Complete(generatedPrivateKey(t))
	require.NoError(t, err)

	twice, err := Complete(once)
	require.NoError(t, err)
	assert.True(t, once.Equal(&twice))
}

func TestCompleteReconstructsPrivateExponent(t *testing.T) {
	t.Run("tiny key", func(t *testing.T) {
		params := Parameters{
			Modulus:         []byte{143},
			PublicExponent:  []byte{7},
			PrimeP:          []byte{11},
			PrimeQ:          []byte{13},
			ExponentDP:      []byte{3},
			ExponentDQ:      []byte{7},
			CoefficientQInv: []byte{6},
		}
		completed, err := Complete(params)
		require.NoError(t, err)
		// d == e^-1 mod lcm(10, 12) == 43
		assert.Equal(t, []byte{43}, completed.PrivateExponent)
	})

	t.Run("generated key", func(t *testing.T) {
		params := generatedPrivateKey(t)
		params.PrivateExponent = nil

		completed, err := Complete(params)
		require.NoError(t, err)
		require.NotEmpty(t, completed.PrivateExponent)

		// The reconstructed d must satisfy both CRT congruences.
		pMinus1 := bigutil.DecrementedBy1(completed.PrimeP)
		qMinus1 := bigutil.DecrementedBy1(completed.PrimeQ)
		assert.Equal(t, 0, bigutil.Compare(completed.ExponentDP, bigutil.Mod(completed.PrivateExponent, pMinus1)))
		assert.Equal(t, 0, bigutil.Compare(completed.ExponentDQ, bigutil.Mod(completed.PrivateExponent, qMinus1)))
	})

	t.Run("mismatched CRT exponents are insufficient", func(t *testing.T) {
		params := Parameters{
			Modulus:         []byte{143},
			PublicExponent:  []byte{7},
			PrimeP:          []byte{11},
			PrimeQ:          []byte{13},
			ExponentDP:      []byte{9}, // wrong
			ExponentDQ:      []byte{7},
			CoefficientQInv: []byte{6},
		}
		_, err := Complete(params)
		assert.ErrorIs(t, err, ErrIncompleteKeyMaterial)
	})
}

func TestCompleteNonCrtPrivateKey(t *testing.T) {
	params := Parameters{
		Modulus:         []byte{143},
		PublicExponent:  []byte{7},
		PrivateExponent: []byte{43},
	}

	completed, err := Complete(params)
	require.NoError(t, err)

	assert.True(t, completed.HasPrivateKey())
	assert.False(t, completed.HasFullPrivateKeyData())
	assert.Empty(t, completed.PrimeP)
}

func TestCompletePublicOnly(t *testing.T) {
	params := Parameters{Modulus: []byte{143}, PublicExponent: []byte{7}}

	completed, err := Complete(params)
	require.NoError(t, err)
	assert.True(t, completed.HasPublicKey())
	assert.False(t, completed.HasPrivateKey())
}

func TestCompleteFailures(t *testing.T) {
	t.Run("no modulus", func(t *testing.T) {
		_, err := Complete(Parameters{PublicExponent: []byte{7}})
		assert.ErrorIs(t, err, ErrIncompleteKeyMaterial)
	})

	t.Run("no public exponent", func(t *testing.T) {
		_, err := Complete(Parameters{Modulus: []byte{143}})
		assert.ErrorIs(t, err, ErrIncompleteKeyMaterial)
	})

	t.Run("modulus is not p*q", func(t *testing.T) {
		params := tinyPrivateKey()
		params.Modulus = []byte{145}
		_, err := Complete(params)
		assert.ErrorIs(t, err, ErrInconsistentKeyMaterial)
	})

	t.Run("d does not pair with e", func(t *testing.T) {
		// 11*43 mod lcm(10, 12) == 53, not 1.
		params := tinyPrivateKey()
		params.PublicExponent = []byte{11}
		_, err := Complete(params)
		assert.ErrorIs(t, err, ErrInconsistentKeyMaterial)
	})

	t.Run("wrong dP is inconsistent", func(t *testing.T) {
		params := tinyPrivateKey()
		params.ExponentDP = []byte{4}
		_, err := Complete(params)
		assert.ErrorIs(t, err, ErrInconsistentKeyMaterial)
	})

	t.Run("factors without any exponent data", func(t *testing.T) {
		_, err := Complete(Parameters{
			Modulus:        []byte{143},
			PublicExponent: []byte{7},
			PrimeP:         []byte{11},
			PrimeQ:         []byte{13},
		})
		assert.ErrorIs(t, err, ErrIncompleteKeyMaterial)
	})
}

func TestCompleteDoesNotMutateInput(t *testing.T) {
	params := tinyPrivateKey()
	_, err := Complete(params)
	require.NoError(t, err)
	assert.Empty(t, params.ExponentDP)
	assert.Empty(t, params.CoefficientQInv)
}
