//go:build unit
// +build unit

package v1

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// MockKeyImportService is a mock implementation of KeyImportService
type MockKeyImportService struct {
	mock.Mock
}

func (m *MockKeyImportService) ImportPublic(ctx context.Context, blob []byte, format keys.BlobFormat) (*keys.KeyMeta, error) {
	args := m.Called(ctx, blob, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.KeyMeta), args.Error(1)
}

func (m *MockKeyImportService) ImportPrivate(ctx context.Context, blob []byte, format keys.BlobFormat) (*keys.KeyMeta, error) {
	args := m.Called(ctx, blob, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.KeyMeta), args.Error(1)
}

func (m *MockKeyImportService) CreateKeyPair(ctx context.Context, keySizeBits int) (*keys.KeyMeta, error) {
	args := m.Called(ctx, keySizeBits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.KeyMeta), args.Error(1)
}

func (m *MockKeyImportService) LegalKeySizes() []keys.KeySizeRange {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]keys.KeySizeRange)
}

// MockKeyExportService is a mock implementation of KeyExportService
type MockKeyExportService struct {
	mock.Mock
}

func (m *MockKeyExportService) Export(ctx context.Context, keyID string, format keys.BlobFormat, private bool) ([]byte, error) {
	args := m.Called(ctx, keyID, format, private)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockKeyMetadataService is a mock implementation of KeyMetadataService
type MockKeyMetadataService struct {
	mock.Mock
}

func (m *MockKeyMetadataService) List(ctx context.Context) ([]*keys.KeyMeta, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keys.KeyMeta), args.Error(1)
}

func (m *MockKeyMetadataService) GetByID(ctx context.Context, keyID string) (*keys.KeyMeta, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.KeyMeta), args.Error(1)
}

func (m *MockKeyMetadataService) DeleteByID(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}
