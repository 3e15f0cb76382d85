package models

import (
	"time"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
)

// KeyRecordModel is the GORM database model for imported key metadata
// (infrastructure concern)
type KeyRecordModel struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	Type            string    `gorm:"type:varchar(20)"`
	KeySize         int       `gorm:"type:integer"`
	SourceFormat    string    `gorm:"type:varchar(20)"`
	FullPrivateData bool      `gorm:"not null"`
	DateTimeCreated time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (KeyRecordModel) TableName() string {
	return "key_records"
}

// ToDomain converts GORM model to domain entity
func (m *KeyRecordModel) ToDomain() *keys.KeyMeta {
	return &keys.KeyMeta{
		ID:              m.ID,
		Type:            m.Type,
		KeySize:         m.KeySize,
		SourceFormat:    keys.BlobFormat(m.SourceFormat),
		FullPrivateData: m.FullPrivateData,
		DateTimeCreated: m.DateTimeCreated,
	}
}

// FromDomain converts domain entity to GORM model
func (m *KeyRecordModel) FromDomain(k *keys.KeyMeta) {
	m.ID = k.ID
	m.Type = k.Type
	m.KeySize = k.KeySize
	m.SourceFormat = string(k.SourceFormat)
	m.FullPrivateData = k.FullPrivateData
	m.DateTimeCreated = k.DateTimeCreated
}
