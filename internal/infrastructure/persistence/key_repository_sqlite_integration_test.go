//go:build integration
// +build integration

package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence/models"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/config"
)

func TestKeySqliteRepository_Create(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestKeyMetaWithOptions(t, keys.KeyTypePrivate, keys.FormatPkcs8, 2048, true)

	err := ctx.KeyRepo.Create(context.Background(), meta)
	require.NoError(t, err)

	var createdRecord models.KeyRecordModel
	err = ctx.DB.First(&createdRecord, "id = ?", meta.ID).Error
	require.NoError(t, err)
	assert.Equal(t, meta.ID, createdRecord.ID)
	assert.Equal(t, meta.Type, createdRecord.Type)
	assert.True(t, createdRecord.FullPrivateData)
}

func TestKeySqliteRepository_GetByID(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestKeyMetaWithOptions(t, keys.KeyTypePublic, keys.FormatCapi, 1024, false)

	err := ctx.KeyRepo.Create(context.Background(), meta)
	require.NoError(t, err)

	fetched, err := ctx.KeyRepo.GetByID(context.Background(), meta.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetched)
	assert.Equal(t, meta.ID, fetched.ID)
	assert.Equal(t, keys.FormatCapi, fetched.SourceFormat)
}

func TestKeySqliteRepository_List(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta1 := CreateTestKeyMetaWithOptions(t, keys.KeyTypePrivate, keys.FormatPkcs1, 2048, true)
	meta2 := CreateTestKeyMetaWithOptions(t, keys.KeyTypePublic, keys.FormatSubjectPublicKeyInfo, 4096, false)

	require.NoError(t, ctx.KeyRepo.Create(context.Background(), meta1))
	require.NoError(t, ctx.KeyRepo.Create(context.Background(), meta2))

	metas, err := ctx.KeyRepo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestKeySqliteRepository_DeleteByID(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestKeyMeta(t)

	require.NoError(t, ctx.KeyRepo.Create(context.Background(), meta))
	require.NoError(t, ctx.KeyRepo.DeleteByID(context.Background(), meta.ID))

	var deletedRecord models.KeyRecordModel
	err := ctx.DB.First(&deletedRecord, "id = ?", meta.ID).Error
	assert.Error(t, err)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestKeySqliteRepository_GetByID_NotFound(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta, err := ctx.KeyRepo.GetByID(context.Background(), uuid.NewString())
	assert.Nil(t, meta)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeySqliteRepository_Create_ValidationError(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	invalidMeta := &keys.KeyMeta{} // Missing required fields

	err := ctx.KeyRepo.Create(context.Background(), invalidMeta)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
