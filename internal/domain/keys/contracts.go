package keys

import (
	"context"
)

// Codec translates between a wire encoding and the canonical Parameters
// model. One implementation exists per BlobFormat; the codec registry in the
// infrastructure layer selects the right one for a tag.
type Codec interface {
	// Format reports the blob format this codec handles.
	Format() BlobFormat

	// DecodePublic parses a public key blob.
	// It returns the decoded Parameters and any structural decoding error.
	DecodePublic(blob []byte) (Parameters, error)

	// DecodePrivate parses a private key blob.
	// It returns the decoded Parameters and any structural decoding error.
	DecodePrivate(blob []byte) (Parameters, error)

	// EncodePublic serializes the public fields of a parameter set.
	EncodePublic(params Parameters) ([]byte, error)

	// EncodePrivate serializes a private parameter set. Formats that carry
	// the CRT representation fail with ErrIncompleteKeyMaterial when the set
	// lacks full private key data.
	EncodePrivate(params Parameters) ([]byte, error)
}

// KeyHandle is an opaque reference to a native platform key object. The
// handle is owned exclusively by its creator and must be closed exactly once;
// every operation after Close fails.
type KeyHandle interface {
	// ID returns the identifier the handle is tracked under.
	ID() string

	// Public returns the public half of the key as canonical Parameters.
	Public() Parameters

	// HasFullPrivateKeyData reports the capability flag the handle was
	// imported with: whether the full CRT private representation is held.
	HasFullPrivateKeyData() bool

	// Export re-reads the key material held by the platform object.
	// Public-only handles fail private exports with ErrNotAPrivateKey.
	Export(private bool) (Parameters, error)

	// Close releases the native object. Releasing twice is an error.
	Close() error
}

// PlatformKeyStore is the collaborator that turns completed Parameters into
// native key objects. Implementations wrap an operating-system provider; the
// portable implementation wraps crypto/rsa. Opaque provider failures surface
// as ErrPlatformRejected.
type PlatformKeyStore interface {
	// ImportKey hands a completed parameter set to the platform. The
	// fullPrivateData flag states explicitly whether the CRT representation
	// is populated; platforms that cannot take non-CRT private keys reject
	// the import rather than silently degrading.
	ImportKey(ctx context.Context, params Parameters, fullPrivateData bool) (KeyHandle, error)

	// GenerateKeyPair delegates key generation to the platform.
	GenerateKeyPair(ctx context.Context, keySizeBits int) (KeyHandle, error)

	// LegalKeySizes reports the key sizes the platform accepts.
	LegalKeySizes() []KeySizeRange
}

// KeySizeRange describes a contiguous set of legal key sizes in bits.
type KeySizeRange struct {
	MinBits  int
	MaxBits  int
	StepBits int
}

// Contains reports whether bits is a legal size within the range.
func (r KeySizeRange) Contains(bits int) bool {
	if bits < r.MinBits || bits > r.MaxBits {
		return false
	}
	if r.StepBits == 0 {
		return bits == r.MinBits
	}
	return (bits-r.MinBits)%r.StepBits == 0
}

// KeyImportService defines the outward-facing import surface.
type KeyImportService interface {
	// ImportPublic decodes a public key blob in the declared format,
	// completes it and hands it to the platform store.
	// It returns metadata for the imported key and any error encountered.
	ImportPublic(ctx context.Context, blob []byte, format BlobFormat) (*KeyMeta, error)

	// ImportPrivate decodes a private key blob in the declared format,
	// completes the parameter set and hands it to the platform store.
	// It returns metadata for the imported key and any error encountered.
	ImportPrivate(ctx context.Context, blob []byte, format BlobFormat) (*KeyMeta, error)

	// CreateKeyPair generates a fresh key pair through the platform store.
	CreateKeyPair(ctx context.Context, keySizeBits int) (*KeyMeta, error)

	// LegalKeySizes reports the platform's accepted key sizes.
	LegalKeySizes() []KeySizeRange
}

// KeyExportService defines the outward-facing export surface.
type KeyExportService interface {
	// Export re-encodes a held key into the requested format. The private
	// flag selects the private or public encoding.
	Export(ctx context.Context, keyID string, format BlobFormat, private bool) ([]byte, error)
}

// KeyMetadataService manages the stored metadata of imported keys.
type KeyMetadataService interface {
	// List retrieves metadata for every tracked key.
	List(ctx context.Context) ([]*KeyMeta, error)

	// GetByID retrieves the metadata of a key by its unique ID.
	GetByID(ctx context.Context, keyID string) (*KeyMeta, error)

	// DeleteByID closes a key's platform handle and removes its metadata.
	DeleteByID(ctx context.Context, keyID string) error
}

// KeyRepository defines persistence for key metadata records.
type KeyRepository interface {
	Create(ctx context.Context, meta *KeyMeta) error
	List(ctx context.Context) ([]*KeyMeta, error)
	GetByID(ctx context.Context, keyID string) (*KeyMeta, error)
	DeleteByID(ctx context.Context, keyID string) error
}
