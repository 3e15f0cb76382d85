// Package platform provides the native key object collaborator. The
// implementation here is the portable software store over crypto/rsa;
// operating-system providers plug in behind the same keys.PlatformKeyStore
// contract.
package platform

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

// softwareKeyStore implements keys.PlatformKeyStore over crypto/rsa.
type softwareKeyStore struct {
	logger logger.Logger
}

// NewSoftwareKeyStore creates and returns a new software-backed key store.
func NewSoftwareKeyStore(logger logger.Logger) (keys.PlatformKeyStore, error) {
	return &softwareKeyStore{logger: logger}, nil
}

// ImportKey validates the completed parameter set against crypto/rsa and
// wraps it in a handle. Full private keys run the library's consistency
// validation; failures surface as ErrPlatformRejected. Non-CRT private keys
// are accepted as-is, which the fullPrivateData flag makes explicit to the
// caller.
func (s *softwareKeyStore) ImportKey(ctx context.Context, params keys.Parameters, fullPrivateData bool) (keys.KeyHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !params.HasPublicKey() {
		return nil, fmt.Errorf("%w: missing public fields", keys.ErrPlatformRejected)
	}
	if fullPrivateData != params.HasFullPrivateKeyData() {
		return nil, fmt.Errorf("%w: capability flag disagrees with supplied fields", keys.ErrPlatformRejected)
	}

	if _, err := publicKeyFromParameters(&params); err != nil {
		return nil, err
	}
	if fullPrivateData {
		priv, err := privateKeyFromParameters(&params)
		if err != nil {
			return nil, err
		}
		if err := priv.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", keys.ErrPlatformRejected, err)
		}
	}

	handle := newSoftwareKeyHandle(params, fullPrivateData)
	s.logger.Info("Imported RSA key ", handle.ID(), " (", params.ModulusBitLength(), " bit)")
	return handle, nil
}

// GenerateKeyPair delegates key generation to crypto/rsa.
func (s *softwareKeyStore) GenerateKeyPair(ctx context.Context, keySizeBits int) (keys.KeyHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !legalKeySize(s.LegalKeySizes(), keySizeBits) {
		return nil, fmt.Errorf("%w: illegal key size %d", keys.ErrIncompatibleKeySize, keySizeBits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, keySizeBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keys.ErrPlatformRejected, err)
	}

	handle := newSoftwareKeyHandle(parametersFromPrivateKey(privateKey), true)
	s.logger.Info("Generated RSA key pair ", handle.ID(), " (", keySizeBits, " bit)")
	return handle, nil
}

// LegalKeySizes reports the sizes crypto/rsa is willing to generate here,
// matching the CNG provider's advertised range.
func (s *softwareKeyStore) LegalKeySizes() []keys.KeySizeRange {
	return []keys.KeySizeRange{{MinBits: 512, MaxBits: 16384, StepBits: 64}}
}

func legalKeySize(ranges []keys.KeySizeRange, bits int) bool {
	for _, r := range ranges {
		if r.Contains(bits) {
			return true
		}
	}
	return false
}

// softwareKeyHandle is the owned-resource wrapper around imported material.
// Close releases it exactly once; the zero handle after Close refuses every
// operation.
type softwareKeyHandle struct {
	id     string
	params keys.Parameters
	full   bool

	mu     sync.Mutex
	closed bool
}

func newSoftwareKeyHandle(params keys.Parameters, fullPrivateData bool) *softwareKeyHandle {
	return &softwareKeyHandle{
		id:     uuid.New().String(),
		params: params,
		full:   fullPrivateData,
	}
}

// ID returns the identifier the handle is tracked under.
func (h *softwareKeyHandle) ID() string {
	return h.id
}

// Public returns the public half of the key.
func (h *softwareKeyHandle) Public() keys.Parameters {
	return keys.Parameters{
		Modulus:        h.params.Modulus,
		PublicExponent: h.params.PublicExponent,
	}
}

// HasFullPrivateKeyData reports the capability flag the handle was imported
// with.
func (h *softwareKeyHandle) HasFullPrivateKeyData() bool {
	return h.full
}

// Export re-reads the held key material.
func (h *softwareKeyHandle) Export(private bool) (keys.Parameters, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return keys.Parameters{}, fmt.Errorf("%w: handle %s is closed", keys.ErrPlatformRejected, h.id)
	}
	if private {
		if !h.params.HasPrivateKey() {
			return keys.Parameters{}, keys.ErrNotAPrivateKey
		}
		return h.params.Clone(), nil
	}
	return h.Public().Clone(), nil
}

// Close releases the native object. Releasing twice is an error.
func (h *softwareKeyHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: handle %s already closed", keys.ErrPlatformRejected, h.id)
	}
	h.closed = true
	h.params = keys.Parameters{}
	return nil
}

// privateKeyFromParameters maps a full parameter set onto rsa.PrivateKey.
func privateKeyFromParameters(p *keys.Parameters) (*rsa.PrivateKey, error) {
	pub, err := publicKeyFromParameters(p)
	if err != nil {
		return nil, err
	}
	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(p.PrivateExponent),
		Primes: []*big.Int{
			new(big.Int).SetBytes(p.PrimeP),
			new(big.Int).SetBytes(p.PrimeQ),
		},
	}
	priv.Precompute()
	return priv, nil
}

// publicKeyFromParameters maps the public fields onto rsa.PublicKey. The
// stdlib type holds the exponent as an int, so exponents beyond 62 bits are
// rejected by the platform rather than silently wrapped.
func publicKeyFromParameters(p *keys.Parameters) (*rsa.PublicKey, error) {
	e := new(big.Int).SetBytes(p.PublicExponent)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, fmt.Errorf("%w: public exponent out of range", keys.ErrPlatformRejected)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(p.Modulus),
		E: int(e.Int64()),
	}, nil
}

// parametersFromPrivateKey maps a generated rsa.PrivateKey onto the canonical
// model, carrying the precomputed CRT values.
func parametersFromPrivateKey(priv *rsa.PrivateKey) keys.Parameters {
	priv.Precompute()
	return keys.Parameters{
		Modulus:         priv.N.Bytes(),
		PublicExponent:  big.NewInt(int64(priv.E)).Bytes(),
		PrivateExponent: priv.D.Bytes(),
		PrimeP:          priv.Primes[0].Bytes(),
		PrimeQ:          priv.Primes[1].Bytes(),
		ExponentDP:      priv.Precomputed.Dp.Bytes(),
		ExponentDQ:      priv.Precomputed.Dq.Bytes(),
		CoefficientQInv: priv.Precomputed.Qinv.Bytes(),
	}
}
