package quantum

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"

	"github.com/quantumair/qbooking/internal/domain"
)

const (
	aesKeySize       = 32
	gcmNonceSize     = 12
	sharedSecretSize = 32

	// ML-KEM-768 wire sizes per FIPS 203; the simulated backend shapes
	// its artifacts to these so downstream length checks hold.
	simKEMPublicKeySize  = 1184
	simKEMPrivateKeySize = 2400
	simKEMCapsuleSize    = 1088
)

// HKDF domain separation for the symmetric key derivation. Changing
// either value invalidates every stored capsule.
var (
	hkdfSalt = []byte("quantum-salt")
	hkdfInfo = []byte("quantum-airline-aes-key")
)

// EncryptResult carries the ciphertext and every artifact needed to
// decrypt it later. PrivateKey is secret material: it leaves the
// process only when demo mode explicitly asks for it.
type EncryptResult struct {
	Ciphertext    []byte // AES-256-GCM output with the tag appended
	Encapsulation []byte
	Nonce         []byte
	PublicKey     []byte
	PrivateKey    []byte
	Algorithm     string
	Simulated     bool
}

type kemBackend interface {
	// Encapsulate generates a fresh keypair, the capsule a private-key
	// holder can open, and the shared secret both sides derive from it.
	Encapsulate() (pub, priv, capsule, shared []byte, err error)
	Decapsulate(priv, capsule []byte) ([]byte, error)
	Algorithm() string
}

// EncryptionService protects passenger identity data with hybrid
// encryption: a key encapsulation mechanism produces a shared secret,
// HKDF derives a 256-bit key from it, and AES-256-GCM authenticates
// and encrypts the payload.
type EncryptionService struct {
	backend   kemBackend
	simulated bool
}

func NewEncryptionService(caps Capabilities) *EncryptionService {
	if caps.KEM == BackendReal {
		return &EncryptionService{backend: &mlkemBackend{scheme: mlkem768.Scheme()}}
	}
	return &EncryptionService{backend: simulatedKEM{}, simulated: true}
}

func (s *EncryptionService) Algorithm() string {
	return s.backend.Algorithm()
}

// Encrypt seals plaintext under a freshly encapsulated key. Empty
// plaintext is legal; input policy belongs to the caller.
func (s *EncryptionService) Encrypt(plaintext []byte) (*EncryptResult, error) {
	pub, priv, capsule, shared, err := s.backend.Encapsulate()
	if err != nil {
		return nil, fmt.Errorf("%w: encapsulation: %v", domain.ErrCryptoFailure, err)
	}

	key, err := deriveKey(shared)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", domain.ErrCryptoFailure, err)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", domain.ErrCryptoFailure, err)
	}

	return &EncryptResult{
		Ciphertext:    aead.Seal(nil, nonce, plaintext, nil),
		Encapsulation: capsule,
		Nonce:         nonce,
		PublicKey:     pub,
		PrivateKey:    priv,
		Algorithm:     s.backend.Algorithm(),
		Simulated:     s.simulated,
	}, nil
}

// Decrypt recovers the plaintext and fails closed: a tag mismatch
// reports ErrIntegrityFailure and never partial data.
func (s *EncryptionService) Decrypt(ciphertext, capsule, nonce, privateKey []byte) ([]byte, error) {
	shared, err := s.backend.Decapsulate(privateKey, capsule)
	if err != nil {
		return nil, fmt.Errorf("%w: decapsulation: %v", domain.ErrCryptoFailure, err)
	}

	key, err := deriveKey(shared)
	if err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", domain.ErrCryptoFailure, err)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	if len(nonce) != gcmNonceSize {
		return nil, fmt.Errorf("%w: nonce length %d", domain.ErrIntegrityFailure, len(nonce))
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication tag mismatch", domain.ErrIntegrityFailure)
	}
	if plaintext == nil {
		// Open returns nil for an empty message; an authenticated empty
		// payload is still a payload.
		plaintext = []byte{}
	}
	return plaintext, nil
}

// deriveKey runs the shared secret through HKDF-SHA256 (extract with
// the fixed salt, expand with the fixed info string) to an AES-256 key.
func deriveKey(shared []byte) ([]byte, error) {
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, hkdfSalt, hkdfInfo), key); err != nil {
		return nil, err
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

type mlkemBackend struct {
	scheme kem.Scheme
}

func (b *mlkemBackend) Encapsulate() ([]byte, []byte, []byte, []byte, error) {
	pk, sk, err := b.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	capsule, shared, err := b.scheme.Encapsulate(pk)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return pub, priv, capsule, shared, nil
}

func (b *mlkemBackend) Decapsulate(priv, capsule []byte) ([]byte, error) {
	sk, err := b.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return b.scheme.Decapsulate(sk, capsule)
}

func (b *mlkemBackend) Algorithm() string {
	return AlgoKEMReal
}

// simulatedKEM mimics the shapes of ML-KEM-768 without its security:
// the shared secret rides in the leading bytes of the capsule so the
// decrypting side can read it back out. A behavioral stand-in for
// round-trip testing, never a security boundary.
type simulatedKEM struct{}

func (simulatedKEM) Encapsulate() ([]byte, []byte, []byte, []byte, error) {
	pub, err := randomBytes(simKEMPublicKeySize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	priv, err := randomBytes(simKEMPrivateKeySize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	shared, err := randomBytes(sharedSecretSize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	filler, err := randomBytes(simKEMCapsuleSize - sharedSecretSize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	capsule := make([]byte, 0, simKEMCapsuleSize)
	capsule = append(capsule, shared...)
	capsule = append(capsule, filler...)
	return pub, priv, capsule, shared, nil
}

func (simulatedKEM) Decapsulate(_, capsule []byte) ([]byte, error) {
	if len(capsule) < sharedSecretSize {
		return nil, errors.New("capsule too short")
	}
	return capsule[:sharedSecretSize], nil
}

func (simulatedKEM) Algorithm() string {
	return AlgoKEMSimulated
}
