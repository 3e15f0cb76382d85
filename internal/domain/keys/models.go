package keys

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// KeyType labels the half of the key pair a record refers to.
const (
	KeyTypePublic  = "public"
	KeyTypePrivate = "private"
)

// KeyMeta carries the stored metadata of an imported or generated key. The
// key material itself lives in the platform handle tracked under ID; the
// metadata records what kind of material it is.
type KeyMeta struct {
	ID              string     `validate:"required"`
	Type            string     `validate:"required,oneof=public private"`
	KeySize         int        `validate:"required,min=512,max=16384"`
	SourceFormat    BlobFormat `validate:"required"`
	FullPrivateData bool
	DateTimeCreated time.Time
}

// Validate for validating KeyMeta struct
func (m *KeyMeta) Validate() error {
	validate := validator.New()

	err := validate.Struct(m)
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
