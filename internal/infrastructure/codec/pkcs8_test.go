//go:build unit
// +build unit

package codec

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

func TestPkcs8PrivateRoundTrip(t *testing.T) {
	c := NewPkcs8Codec()
	params := testParameters(t)

	blob, err := c.EncodePrivate(params)
	require.NoError(t, err)

	expected, err := x509.MarshalPKCS8PrivateKey(testRsaKey(t))
	require.NoError(t, err)
	assert.Equal(t, expected, blob)

	decoded, err := c.DecodePrivate(blob)
	require.NoError(t, err)
	assert.True(t, params.Equal(&decoded))
}

func TestPkcs8DecodeRejectsForeignAlgorithm(t *testing.T) {
	c := NewPkcs8Codec()

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	blob, err := x509.MarshalPKCS8PrivateKey(ecKey)
	require.NoError(t, err)

	_, err = c.DecodePrivate(blob)
	assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)
}

func TestPkcs8HasNoPublicShape(t *testing.T) {
	c := NewPkcs8Codec()

	_, err := c.DecodePublic([]byte{0x30, 0x00})
	assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)

	_, err = c.EncodePublic(testParameters(t))
	assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)
}

func TestPkcs8DecodeBoundaries(t *testing.T) {
	c := NewPkcs8Codec()
	valid, err := c.EncodePrivate(testParameters(t))
	require.NoError(t, err)

	t.Run("empty buffer", func(t *testing.T) {
		_, err := c.DecodePrivate(nil)
		assert.ErrorIs(t, err, keys.ErrTruncatedInput)
	})

	t.Run("truncated envelope", func(t *testing.T) {
		_, err := c.DecodePrivate(valid[:10])
		assert.ErrorIs(t, err, keys.ErrTruncatedInput)
	})

	t.Run("wrong outer tag", func(t *testing.T) {
		corrupted := append([]byte{}, valid...)
		corrupted[0] = 0x04
		_, err := c.DecodePrivate(corrupted)
		assert.ErrorIs(t, err, keys.ErrMalformedEncoding)
	})

	t.Run("nonzero version", func(t *testing.T) {
		// SEQUENCE { INTEGER 1, SEQUENCE {} }
		blob := []byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x30, 0x00}
		_, err := c.DecodePrivate(blob)
		assert.ErrorIs(t, err, keys.ErrMalformedEncoding)
	})
}
