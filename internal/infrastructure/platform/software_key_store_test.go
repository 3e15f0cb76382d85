//go:build unit
// +build unit

package platform

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

func testStore(t *testing.T) keys.PlatformKeyStore {
	t.Helper()
	store, err := NewSoftwareKeyStore(logger.NewConsoleLogger("info"))
	require.NoError(t, err)
	return store
}

func fullParameters(t *testing.T) keys.Parameters {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	priv.Precompute()
	return keys.Parameters{
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

func TestImportFullPrivateKey(t *testing.T) {
	store := testStore(t)
	params := fullParameters(t)

	handle, err := store.ImportKey(context.Background(), params, true)
	require.NoError(t, err)
	defer handle.Close()

	assert.NotEmpty(t, handle.ID())
	assert.True(t, handle.HasFullPrivateKeyData())

	exported, err := handle.Export(true)
	require.NoError(t, err)
	assert.True(t, params.Equal(&exported))

	public, err := handle.Export(false)
	require.NoError(t, err)
	assert.False(t, public.HasPrivateKey())
	assert.Equal(t, params.Modulus, public.Modulus)
}

func TestImportPublicKey(t *testing.T) {
	store := testStore(t)
	params := fullParameters(t)
	publicOnly := keys.Parameters{Modulus: params.Modulus, PublicExponent: params.PublicExponent}

	handle, err := store.ImportKey(context.Background(), publicOnly, false)
	require.NoError(t, err)
	defer handle.Close()

	assert.False(t, handle.HasFullPrivateKeyData())
	_, err = handle.Export(true)
	assert.ErrorIs(t, err, keys.ErrNotAPrivateKey)
}

func TestImportRejections(t *testing.T) {
	store := testStore(t)
	params := fullParameters(t)

	t.Run("missing public fields", func(t *testing.T) {
		_, err := store.ImportKey(context.Background(), keys.Parameters{PrivateExponent: []byte{0x2b}}, false)
		assert.ErrorIs(t, err, keys.ErrPlatformRejected)
	})

	t.Run("capability flag mismatch", func(t *testing.T) {
		publicOnly := keys.Parameters{Modulus: params.Modulus, PublicExponent: params.PublicExponent}
		_, err := store.ImportKey(context.Background(), publicOnly, true)
		assert.ErrorIs(t, err, keys.ErrPlatformRejected)
	})

	t.Run("inconsistent key material", func(t *testing.T) {
		broken := params.Clone()
		broken.PrimeP[len(broken.PrimeP)-1] ^= 0x06 // still odd, no longer a factor
		_, err := store.ImportKey(context.Background(), broken, true)
		assert.ErrorIs(t, err, keys.ErrPlatformRejected)
	})

	t.Run("oversized public exponent", func(t *testing.T) {
		widened := keys.Parameters{
			Modulus:        params.Modulus,
			PublicExponent: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
		}
		_, err := store.ImportKey(context.Background(), widened, false)
		assert.ErrorIs(t, err, keys.ErrPlatformRejected)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.ImportKey(ctx, params, true)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGenerateKeyPair(t *testing.T) {
	store := testStore(t)

	handle, err := store.GenerateKeyPair(context.Background(), 1024)
	require.NoError(t, err)
	defer handle.Close()

	assert.True(t, handle.HasFullPrivateKeyData())
	exported, err := handle.Export(true)
	require.NoError(t, err)
	assert.True(t, exported.HasFullPrivateKeyData())
	assert.Equal(t, 1024, exported.ModulusBitLength())
}

func TestGenerateKeyPairRejectsIllegalSizes(t *testing.T) {
	store := testStore(t)

	for _, bits := range []int{0, 100, 511, 1000, 16448} {
		_, err := store.GenerateKeyPair(context.Background(), bits)
		assert.ErrorIs(t, err, keys.ErrIncompatibleKeySize, "size %d", bits)
	}
}

func TestHandleCloseSemantics(t *testing.T) {
	store := testStore(t)
	handle, err := store.ImportKey(context.Background(), fullParameters(t), true)
	require.NoError(t, err)

	require.NoError(t, handle.Close())

	_, err = handle.Export(true)
	assert.ErrorIs(t, err, keys.ErrPlatformRejected)

	assert.Error(t, handle.Close(), "second close must fail")
}
