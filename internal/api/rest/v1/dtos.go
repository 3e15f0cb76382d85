package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/validators"
)

// ErrorResponse is the error payload every endpoint returns on failure.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ImportKeyRequest carries a base64-encoded key blob and its declared format.
type ImportKeyRequest struct {
	Format string `json:"format" validate:"required,oneof=pkcs1 pkcs8 spki capi"`
	Type   string `json:"type" validate:"required,oneof=public private"`
	Blob   string `json:"blob" validate:"required,base64"`
}

// Validate for validating ImportKeyRequest struct
func (r *ImportKeyRequest) Validate() error {
	return validateStruct(r)
}

// GenerateKeyRequest asks the platform store for a fresh key pair.
type GenerateKeyRequest struct {
	KeySize int `json:"key_size" validate:"required,rsaKeySizeValidation"`
}

// Validate for validating GenerateKeyRequest struct
func (r *GenerateKeyRequest) Validate() error {
	return validateStruct(r)
}

// KeyMetaResponse mirrors keys.KeyMeta on the wire.
type KeyMetaResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	KeySize         int       `json:"key_size"`
	SourceFormat    string    `json:"source_format"`
	FullPrivateData bool      `json:"full_private_data"`
	DateTimeCreated time.Time `json:"date_time_created"`
}

func newKeyMetaResponse(meta *keys.KeyMeta) KeyMetaResponse {
	return KeyMetaResponse{
		ID:              meta.ID,
		Type:            meta.Type,
		KeySize:         meta.KeySize,
		SourceFormat:    string(meta.SourceFormat),
		FullPrivateData: meta.FullPrivateData,
		DateTimeCreated: meta.DateTimeCreated,
	}
}

func validateStruct(s interface{}) error {
	validate := validator.New()

	if err := validate.RegisterValidation("rsaKeySizeValidation", validators.RSAKeySizeValidation); err != nil {
		return fmt.Errorf("failed to register custom validator: %w", err)
	}

	err := validate.Struct(s)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}
