//go:build integration
// +build integration

package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/config"
)

func generateTestKeyBlobs(t *testing.T) (pkcs1Private, pkcs8Private, spkiPublic []byte) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pkcs1Private = x509.MarshalPKCS1PrivateKey(priv)

	pkcs8Private, err = x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)

	spkiPublic, err = x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return pkcs1Private, pkcs8Private, spkiPublic
}

func TestKeyImportService_ImportPrivate(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	pkcs1Private, pkcs8Private, _ := generateTestKeyBlobs(t)

	tests := []struct {
		name   string
		blob   []byte
		format keys.BlobFormat
	}{
		{name: "PKCS#1 private key", blob: pkcs1Private, format: keys.FormatPkcs1},
		{name: "PKCS#8 private key", blob: pkcs8Private, format: keys.FormatPkcs8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := services.ImportService.ImportPrivate(context.Background(), tt.blob, tt.format)
			require.NoError(t, err)

			assert.Equal(t, keys.KeyTypePrivate, meta.Type)
			assert.Equal(t, 2048, meta.KeySize)
			assert.Equal(t, tt.format, meta.SourceFormat)
			assert.True(t, meta.FullPrivateData)

			stored, err := services.MetadataService.GetByID(context.Background(), meta.ID)
			require.NoError(t, err)
			assert.Equal(t, meta.ID, stored.ID)

			_, ok := services.Handles.Get(meta.ID)
			assert.True(t, ok, "handle must be registered after import")
		})
	}
}

func TestKeyImportService_ImportPublic(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	_, _, spkiPublic := generateTestKeyBlobs(t)

	meta, err := services.ImportService.ImportPublic(context.Background(), spkiPublic, keys.FormatSubjectPublicKeyInfo)
	require.NoError(t, err)

	assert.Equal(t, keys.KeyTypePublic, meta.Type)
	assert.False(t, meta.FullPrivateData)
}

func TestKeyImportService_ImportFailures(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	pkcs1Private, _, spkiPublic := generateTestKeyBlobs(t)

	t.Run("unknown format", func(t *testing.T) {
		_, err := services.ImportService.ImportPrivate(context.Background(), pkcs1Private, keys.BlobFormat("jwk"))
		assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)
	})

	t.Run("garbage blob", func(t *testing.T) {
		_, err := services.ImportService.ImportPrivate(context.Background(), []byte{0xde, 0xad, 0xbe, 0xef}, keys.FormatPkcs1)
		assert.ErrorIs(t, err, keys.ErrMalformedEncoding)
	})

	t.Run("truncated blob", func(t *testing.T) {
		_, err := services.ImportService.ImportPrivate(context.Background(), pkcs1Private[:16], keys.FormatPkcs1)
		assert.ErrorIs(t, err, keys.ErrTruncatedInput)
	})

	t.Run("public blob via private import", func(t *testing.T) {
		_, err := services.ImportService.ImportPrivate(context.Background(), spkiPublic, keys.FormatSubjectPublicKeyInfo)
		assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)
	})
}

func TestKeyImportService_CreateKeyPair(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	meta, err := services.ImportService.CreateKeyPair(context.Background(), 1024)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypePrivate, meta.Type)
	assert.Equal(t, 1024, meta.KeySize)
	assert.True(t, meta.FullPrivateData)

	t.Run("illegal size", func(t *testing.T) {
		_, err := services.ImportService.CreateKeyPair(context.Background(), 100)
		assert.ErrorIs(t, err, keys.ErrIncompatibleKeySize)
	})
}

// Format conversion through import-then-export: a PKCS#1 private key comes
// out as PKCS#8, SubjectPublicKeyInfo or a legacy blob.
func TestKeyExportService_FormatConversion(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	pkcs1Private, pkcs8Private, spkiPublic := generateTestKeyBlobs(t)

	meta, err := services.ImportService.ImportPrivate(context.Background(), pkcs1Private, keys.FormatPkcs1)
	require.NoError(t, err)

	t.Run("round trip is byte identical", func(t *testing.T) {
		blob, err := services.ExportService.Export(context.Background(), meta.ID, keys.FormatPkcs1, true)
		require.NoError(t, err)
		assert.Equal(t, pkcs1Private, blob)
	})

	t.Run("to PKCS#8", func(t *testing.T) {
		blob, err := services.ExportService.Export(context.Background(), meta.ID, keys.FormatPkcs8, true)
		require.NoError(t, err)
		assert.Equal(t, pkcs8Private, blob)
	})

	t.Run("public half as SubjectPublicKeyInfo", func(t *testing.T) {
		blob, err := services.ExportService.Export(context.Background(), meta.ID, keys.FormatSubjectPublicKeyInfo, false)
		require.NoError(t, err)
		assert.Equal(t, spkiPublic, blob)
	})

	t.Run("legacy blob negotiates lengths", func(t *testing.T) {
		blob, err := services.ExportService.Export(context.Background(), meta.ID, keys.FormatCapi, true)
		require.NoError(t, err)

		reimported, err := services.ImportService.ImportPrivate(context.Background(), blob, keys.FormatCapi)
		require.NoError(t, err)
		assert.Equal(t, meta.KeySize, reimported.KeySize)
	})

	t.Run("private export in a public-only format", func(t *testing.T) {
		_, err := services.ExportService.Export(context.Background(), meta.ID, keys.FormatSubjectPublicKeyInfo, true)
		assert.ErrorIs(t, err, keys.ErrUnsupportedAlgorithm)
	})

	t.Run("unknown key id", func(t *testing.T) {
		_, err := services.ExportService.Export(context.Background(), uuid.NewString(), keys.FormatPkcs1, true)
		assert.Error(t, err)
	})
}

func TestKeyMetadataService_Lifecycle(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	pkcs1Private, _, spkiPublic := generateTestKeyBlobs(t)

	private, err := services.ImportService.ImportPrivate(context.Background(), pkcs1Private, keys.FormatPkcs1)
	require.NoError(t, err)
	public, err := services.ImportService.ImportPublic(context.Background(), spkiPublic, keys.FormatSubjectPublicKeyInfo)
	require.NoError(t, err)

	metas, err := services.MetadataService.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 2)

	require.NoError(t, services.MetadataService.DeleteByID(context.Background(), private.ID))

	_, err = services.MetadataService.GetByID(context.Background(), private.ID)
	assert.Error(t, err)

	_, ok := services.Handles.Get(private.ID)
	assert.False(t, ok, "handle must be closed and removed on delete")

	_, err = services.ExportService.Export(context.Background(), private.ID, keys.FormatPkcs1, true)
	assert.Error(t, err, "deleted key must not export")

	remaining, err := services.MetadataService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, public.ID, remaining[0].ID)
}
