package quantum

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"

	"github.com/quantumair/qbooking/internal/domain"
)

const mldsaSchemeName = "ML-DSA-65"

// ML-DSA-65 wire sizes per FIPS 204. The simulated backend pads its
// signatures to the real size so consumers that only check shape are
// not misled about the wire format.
const (
	simSignatureSize     = 3309
	simSigPublicKeySize  = 1952
	simSigPrivateKeySize = 4032
)

// mockHMACKey keys the simulated backend. Fixed so that simulated
// signatures verify across process restarts; worthless as a secret.
var mockHMACKey = []byte("QUANTUM_MOCK_KEY_DO_NOT_USE_IN_PRODUCTION_12345")

// SignResult carries a detachable signature over a message plus the
// keypair that produced it and a SHA-256 hex digest of the message for
// quick integrity checks.
type SignResult struct {
	Signature  []byte
	PublicKey  []byte
	PrivateKey []byte
	Digest     string
	Algorithm  string
	Simulated  bool
}

type signatureBackend interface {
	Sign(message []byte) (sig, pub, priv []byte, err error)
	Verify(message, sig, pub []byte) bool
	Algorithm() string
}

// SignatureService produces and verifies ticket authenticity tags with
// either a lattice signature scheme or an HMAC-based simulation.
type SignatureService struct {
	backend   signatureBackend
	simulated bool
}

func NewSignatureService(caps Capabilities) (*SignatureService, error) {
	if caps.Signature == BackendReal {
		scheme := schemes.ByName(mldsaSchemeName)
		if scheme == nil {
			return nil, fmt.Errorf("%w: %s is not linked", domain.ErrCryptoUnavailable, mldsaSchemeName)
		}
		return &SignatureService{backend: &mldsaBackend{scheme: scheme}}, nil
	}
	return &SignatureService{backend: hmacBackend{}, simulated: true}, nil
}

func (s *SignatureService) Algorithm() string {
	return s.backend.Algorithm()
}

func (s *SignatureService) Sign(message []byte) (*SignResult, error) {
	if len(message) == 0 {
		return nil, fmt.Errorf("%w: message to sign is empty", domain.ErrValidation)
	}
	sig, pub, priv, err := s.backend.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("%w: signing: %v", domain.ErrCryptoFailure, err)
	}
	digest := sha256.Sum256(message)
	return &SignResult{
		Signature:  sig,
		PublicKey:  pub,
		PrivateKey: priv,
		Digest:     hex.EncodeToString(digest[:]),
		Algorithm:  s.backend.Algorithm(),
		Simulated:  s.simulated,
	}, nil
}

// Verify reports whether signature matches message under publicKey.
// Tampered or malformed input yields false, never an error.
func (s *SignatureService) Verify(message, signature, publicKey []byte) bool {
	return s.backend.Verify(message, signature, publicKey)
}

type mldsaBackend struct {
	scheme sign.Scheme
}

func (b *mldsaBackend) Sign(message []byte) ([]byte, []byte, []byte, error) {
	pk, sk, err := b.scheme.GenerateKey()
	if err != nil {
		return nil, nil, nil, err
	}
	sig := b.scheme.Sign(sk, message, nil)
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, nil, err
	}
	return sig, pub, priv, nil
}

func (b *mldsaBackend) Verify(message, sig, pub []byte) bool {
	pk, err := b.scheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return false
	}
	return b.scheme.Verify(pk, message, sig, nil)
}

func (b *mldsaBackend) Algorithm() string {
	return AlgoSignatureReal
}

// hmacBackend simulates the lattice signature with HMAC-SHA512 under a
// fixed demonstration key, extended with the SHA-512 of the mock
// public key and repeated out to the real signature length.
type hmacBackend struct{}

func (hmacBackend) Sign(message []byte) ([]byte, []byte, []byte, error) {
	pub, err := randomBytes(simSigPublicKeySize)
	if err != nil {
		return nil, nil, nil, err
	}
	priv, err := randomBytes(simSigPrivateKeySize)
	if err != nil {
		return nil, nil, nil, err
	}

	mac := hmac.New(sha512.New, mockHMACKey)
	mac.Write(message)
	tag := mac.Sum(nil)

	pubDigest := sha512.Sum512(pub)
	block := append(tag, pubDigest[:]...)
	sig := make([]byte, 0, simSignatureSize+len(block))
	for len(sig) < simSignatureSize {
		sig = append(sig, block...)
	}
	return sig[:simSignatureSize], pub, priv, nil
}

// Verify recomputes the HMAC and compares the leading tag bytes in
// constant time; the padding carries no authenticity.
func (hmacBackend) Verify(message, sig, _ []byte) bool {
	if len(sig) < sha512.Size {
		return false
	}
	mac := hmac.New(sha512.New, mockHMACKey)
	mac.Write(message)
	return subtle.ConstantTimeCompare(sig[:sha512.Size], mac.Sum(nil)) == 1
}

func (hmacBackend) Algorithm() string {
	return AlgoSignatureSimulated
}
