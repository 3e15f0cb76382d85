package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

// HandleTable tracks the open platform key handles of this process. Handles
// never outlive the process; only their metadata is persisted. Each handle
// stays owned by the table from registration until Remove, which is the one
// place it gets closed.
type HandleTable struct {
	mu      sync.RWMutex
	handles map[string]keys.KeyHandle
}

// NewHandleTable creates an empty handle table.
func NewHandleTable() *HandleTable {
	return &HandleTable{handles: make(map[string]keys.KeyHandle)}
}

// Put registers a handle under its own ID.
func (t *HandleTable) Put(handle keys.KeyHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handles[handle.ID()] = handle
}

// Get looks a handle up by ID.
func (t *HandleTable) Get(id string) (keys.KeyHandle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	handle, ok := t.handles[id]
	return handle, ok
}

// Remove unregisters a handle and closes it exactly once.
func (t *HandleTable) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	handle, ok := t.handles[id]
	if !ok {
		return fmt.Errorf("no open handle with id %s", id)
	}
	delete(t.handles, id)
	return handle.Close()
}

// keyImportService implements the KeyImportService interface over the codec
// registry, the completion logic and the platform store.
type keyImportService struct {
	registry *codec.Registry
	store    keys.PlatformKeyStore
	keyRepo  keys.KeyRepository
	handles  *HandleTable
	logger   logger.Logger
}

// NewKeyImportService creates a new keyImportService instance
func NewKeyImportService(
	registry *codec.Registry,
	store keys.PlatformKeyStore,
	keyRepo keys.KeyRepository,
	handles *HandleTable,
	logger logger.Logger,
) (keys.KeyImportService, error) {
	return &keyImportService{
		registry: registry,
		store:    store,
		keyRepo:  keyRepo,
		handles:  handles,
		logger:   logger,
	}, nil
}

// ImportPublic decodes a public key blob in the declared format, completes it
// and hands it to the platform store.
func (s *keyImportService) ImportPublic(ctx context.Context, blob []byte, format keys.BlobFormat) (*keys.KeyMeta, error) {
	c, err := s.registry.ForFormat(format)
	if err != nil {
		return nil, err
	}

	params, err := c.DecodePublic(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	return s.finishImport(ctx, params, format, keys.KeyTypePublic)
}

// ImportPrivate decodes a private key blob in the declared format, completes
// the parameter set and hands it to the platform store.
func (s *keyImportService) ImportPrivate(ctx context.Context, blob []byte, format keys.BlobFormat) (*keys.KeyMeta, error) {
	c, err := s.registry.ForFormat(format)
	if err != nil {
		return nil, err
	}

	params, err := c.DecodePrivate(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if !params.HasPrivateKey() {
		return nil, keys.ErrNotAPrivateKey
	}

	return s.finishImport(ctx, params, format, keys.KeyTypePrivate)
}

// CreateKeyPair generates a fresh key pair through the platform store.
func (s *keyImportService) CreateKeyPair(ctx context.Context, keySizeBits int) (*keys.KeyMeta, error) {
	handle, err := s.store.GenerateKeyPair(ctx, keySizeBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return s.register(ctx, handle, keys.FormatPkcs1, keys.KeyTypePrivate)
}

// LegalKeySizes reports the platform's accepted key sizes.
func (s *keyImportService) LegalKeySizes() []keys.KeySizeRange {
	return s.store.LegalKeySizes()
}

// finishImport completes the decoded parameters and registers the resulting
// platform handle. Completion decides the capability flag: a private key
// whose factors could not be derived imports as non-CRT, explicitly.
func (s *keyImportService) finishImport(ctx context.Context, params keys.Parameters, format keys.BlobFormat, keyType string) (*keys.KeyMeta, error) {
	completed, err := keys.Complete(params)
	if err != nil {
		return nil, fmt.Errorf("failed to complete key material: %w", err)
	}

	handle, err := s.store.ImportKey(ctx, completed, completed.HasFullPrivateKeyData())
	if err != nil {
		return nil, fmt.Errorf("platform import failed: %w", err)
	}

	return s.register(ctx, handle, format, keyType)
}

func (s *keyImportService) register(ctx context.Context, handle keys.KeyHandle, format keys.BlobFormat, keyType string) (*keys.KeyMeta, error) {
	meta := &keys.KeyMeta{
		ID:              handle.ID(),
		Type:            keyType,
		KeySize:         handle.Public().ModulusBitLength(),
		SourceFormat:    format,
		FullPrivateData: handle.HasFullPrivateKeyData(),
		DateTimeCreated: time.Now().UTC(),
	}

	if err := s.keyRepo.Create(ctx, meta); err != nil {
		// The platform object must not leak when bookkeeping fails.
		if closeErr := handle.Close(); closeErr != nil {
			s.logger.Warn("failed to close handle after metadata error: ", closeErr)
		}
		return nil, fmt.Errorf("failed to store key metadata: %w", err)
	}

	s.handles.Put(handle)
	s.logger.Info("Imported ", keyType, " key ", meta.ID, " from format ", format)
	return meta, nil
}

// keyExportService implements the KeyExportService interface
type keyExportService struct {
	registry *codec.Registry
	handles  *HandleTable
	logger   logger.Logger
}

// NewKeyExportService creates a new keyExportService instance
func NewKeyExportService(registry *codec.Registry, handles *HandleTable, logger logger.Logger) (keys.KeyExportService, error) {
	return &keyExportService{
		registry: registry,
		handles:  handles,
		logger:   logger,
	}, nil
}

// Export re-encodes a held key into the requested format. Legacy exports run
// the length negotiation first; every other format takes the canonical
// encoding as is.
func (s *keyExportService) Export(ctx context.Context, keyID string, format keys.BlobFormat, private bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := s.registry.ForFormat(format)
	if err != nil {
		return nil, err
	}

	handle, ok := s.handles.Get(keyID)
	if !ok {
		return nil, fmt.Errorf("no open handle with id %s", keyID)
	}

	params, err := handle.Export(private)
	if err != nil {
		return nil, fmt.Errorf("failed to export key material: %w", err)
	}

	if format == keys.FormatCapi {
		params, err = codec.NegotiateCapi(&params)
		if err != nil {
			return nil, fmt.Errorf("legacy format negotiation failed: %w", err)
		}
	}

	var blob []byte
	if private {
		blob, err = c.EncodePrivate(params)
	} else {
		blob, err = c.EncodePublic(params)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode key: %w", err)
	}

	s.logger.Info("Exported key ", keyID, " as ", format)
	return blob, nil
}

// keyMetadataService implements the KeyMetadataService interface
type keyMetadataService struct {
	keyRepo keys.KeyRepository
	handles *HandleTable
	logger  logger.Logger
}

// NewKeyMetadataService creates a new keyMetadataService instance
func NewKeyMetadataService(keyRepo keys.KeyRepository, handles *HandleTable, logger logger.Logger) (keys.KeyMetadataService, error) {
	return &keyMetadataService{
		keyRepo: keyRepo,
		handles: handles,
		logger:  logger,
	}, nil
}

// List retrieves metadata for every tracked key.
func (s *keyMetadataService) List(ctx context.Context) ([]*keys.KeyMeta, error) {
	return s.keyRepo.List(ctx)
}

// GetByID retrieves the metadata of a key by its unique ID.
func (s *keyMetadataService) GetByID(ctx context.Context, keyID string) (*keys.KeyMeta, error) {
	return s.keyRepo.GetByID(ctx, keyID)
}

// DeleteByID closes a key's platform handle and removes its metadata.
func (s *keyMetadataService) DeleteByID(ctx context.Context, keyID string) error {
	if _, err := s.keyRepo.GetByID(ctx, keyID); err != nil {
		return err
	}

	if err := s.handles.Remove(keyID); err != nil {
		s.logger.Warn("handle cleanup: ", err)
	}

	if err := s.keyRepo.DeleteByID(ctx, keyID); err != nil {
		return fmt.Errorf("failed to delete key metadata: %w", err)
	}

	s.logger.Info("Deleted key ", keyID)
	return nil
}
