package keys

import "errors"

// Sentinel errors for key-material translation. Codecs and the completion
// logic wrap these with context via fmt.Errorf("...: %w", ...); callers match
// with errors.Is. All of them are deterministic, data-dependent failures and
// are never retried.
var (
	// ErrMalformedEncoding indicates a structural violation in a parsed blob:
	// a wrong tag, a bad length, non-canonical integer padding or trailing
	// bytes after the outermost structure.
	ErrMalformedEncoding = errors.New("keys: malformed key encoding")

	// ErrTruncatedInput indicates a buffer shorter than its declared content.
	ErrTruncatedInput = errors.New("keys: truncated key blob")

	// ErrUnsupportedAlgorithm indicates an algorithm OID or format tag that
	// does not identify an RSA key.
	ErrUnsupportedAlgorithm = errors.New("keys: unsupported algorithm")

	// ErrIncompleteKeyMaterial indicates that the supplied fields are
	// mathematically insufficient to complete the parameter set.
	ErrIncompleteKeyMaterial = errors.New("keys: incomplete key material")

	// ErrInconsistentKeyMaterial indicates supplied fields that fail a
	// cross-check, e.g. a modulus that is not the product of the primes.
	ErrInconsistentKeyMaterial = errors.New("keys: inconsistent key material")

	// ErrIncompatibleKeySize indicates a parameter set that cannot satisfy
	// the legacy CAPI blob's length constraints. This is a hard reject.
	ErrIncompatibleKeySize = errors.New("keys: key size incompatible with legacy format")

	// ErrNotAPrivateKey indicates an attempt to use a public-only parameter
	// set where private key material is required.
	ErrNotAPrivateKey = errors.New("keys: not a private key")

	// ErrPlatformRejected wraps an opaque failure from the platform key
	// object during import.
	ErrPlatformRejected = errors.New("keys: platform rejected key material")
)
