//go:build integration
// +build integration

package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/platform"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/testutil"
)

// TestServices holds all application services and dependencies for testing
type TestServices struct {
	ImportService   keys.KeyImportService
	ExportService   keys.KeyExportService
	MetadataService keys.KeyMetadataService

	Handles   *HandleTable
	DBContext *persistence.TestContext
}

// SetupTestServices initializes all application services for integration tests
func SetupTestServices(t *testing.T, dbType string) *TestServices {
	t.Helper()

	logger := testutil.SetupTestLogger(t)
	dbContext := persistence.SetupTestDB(t, dbType)

	store, err := platform.NewSoftwareKeyStore(logger)
	require.NoError(t, err, "Failed to create software key store")

	registry := codec.NewRegistry()
	handles := NewHandleTable()

	importService, err := NewKeyImportService(registry, store, dbContext.KeyRepo, handles, logger)
	require.NoError(t, err, "Failed to create KeyImportService")

	exportService, err := NewKeyExportService(registry, handles, logger)
	require.NoError(t, err, "Failed to create KeyExportService")

	metadataService, err := NewKeyMetadataService(dbContext.KeyRepo, handles, logger)
	require.NoError(t, err, "Failed to create KeyMetadataService")

	return &TestServices{
		ImportService:   importService,
		ExportService:   exportService,
		MetadataService: metadataService,
		Handles:         handles,
		DBContext:       dbContext,
	}
}
