//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence/models"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/config"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/testutil"
)

// TestContext holds the test database and repositories.
type TestContext struct {
	DB      *gorm.DB
	KeyRepo keys.KeyRepository
}

// SetupTestDB initializes a test database with automatic cleanup.
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	var cleanupFunc func()

	switch dbType {
	case config.SqliteDbType:
		settings = config.DatabaseSettings{
			Type: config.SqliteDbType,
			DSN:  ":memory:",
		}
		cleanupFunc = func() {
			// SQLite in-memory cleanup is automatic
		}

	case config.PostgresDbType:
		uniqueDBName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type:   config.PostgresDbType,
			DSN:    "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
			DBName: uniqueDBName,
		}
		cleanupFunc = func() {
			adminDSN := "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable"
			_ = DropDatabase(adminDSN, uniqueDBName)
		}

	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	db, err := NewDBConnection(settings)
	require.NoError(t, err, "Failed to create database connection")

	t.Cleanup(func() {
		CloseDB(db)
		cleanupFunc()
	})

	err = db.AutoMigrate(&models.KeyRecordModel{})
	require.NoError(t, err, "Failed to migrate schema")

	logger := testutil.SetupTestLogger(t)

	keyRepo, err := NewGormKeyRepository(db, logger)
	require.NoError(t, err, "Failed to create key repository")

	return &TestContext{
		DB:      db,
		KeyRepo: keyRepo,
	}
}

// CreateTestKeyMeta builds key metadata with default values.
func CreateTestKeyMeta(t *testing.T) *keys.KeyMeta {
	t.Helper()

	return &keys.KeyMeta{
		ID:              uuid.NewString(),
		Type:            keys.KeyTypePublic,
		KeySize:         2048,
		SourceFormat:    keys.FormatSubjectPublicKeyInfo,
		FullPrivateData: false,
		DateTimeCreated: time.Now().UTC(),
	}
}

// CreateTestKeyMetaWithOptions builds key metadata with custom options.
func CreateTestKeyMetaWithOptions(t *testing.T, keyType string, format keys.BlobFormat, keySize int, fullPrivateData bool) *keys.KeyMeta {
	t.Helper()

	return &keys.KeyMeta{
		ID:              uuid.NewString(),
		Type:            keyType,
		KeySize:         keySize,
		SourceFormat:    format,
		FullPrivateData: fullPrivateData,
		DateTimeCreated: time.Now().UTC(),
	}
}
