package validators

import (
	"github.com/go-playground/validator/v10"
)

// RSAKeySizeValidation validates a requested modulus length against the range
// the software key store advertises: 512 to 16384 bits in 64 bit steps.
func RSAKeySizeValidation(fl validator.FieldLevel) bool {
	keySize := fl.Field().Int()
	return keySize >= 512 && keySize <= 16384 && keySize%64 == 0
}
