package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence/models"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

// ErrKeyNotFound is returned when a key record does not exist.
var ErrKeyNotFound = errors.New("key record not found")

type gormKeyRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormKeyRepository creates a new GORM-based KeyRepository implementation
func NewGormKeyRepository(db *gorm.DB, logger logger.Logger) (keys.KeyRepository, error) {
	return &gormKeyRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormKeyRepository) Create(ctx context.Context, meta *keys.KeyMeta) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.KeyRecordModel{}
	model.FromDomain(meta)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create key record: %w", err)
	}

	r.logger.Info("Created key record with id ", meta.ID)
	return nil
}

func (r *gormKeyRepository) List(ctx context.Context) ([]*keys.KeyMeta, error) {
	var modelList []*models.KeyRecordModel
	if err := r.db.WithContext(ctx).
		Model(&models.KeyRecordModel{}).
		Order("date_time_created asc").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch key records: %w", err)
	}

	domainList := make([]*keys.KeyMeta, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}

	return domainList, nil
}

func (r *gormKeyRepository) GetByID(ctx context.Context, keyID string) (*keys.KeyMeta, error) {
	var model models.KeyRecordModel
	if err := r.db.WithContext(ctx).Where("id = ?", keyID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
		}
		return nil, fmt.Errorf("failed to fetch key record: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormKeyRepository) DeleteByID(ctx context.Context, keyID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", keyID).Delete(&models.KeyRecordModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete key record: %w", err)
	}

	r.logger.Info("Deleted key record with id ", keyID)
	return nil
}
