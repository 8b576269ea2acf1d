package quantum

import (
	"crypto/rand"
	"fmt"

	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/domain"
)

// Backend selects between the linked lattice implementation and the
// classical simulation for one cryptographic service.
type Backend string

const (
	BackendReal      Backend = "real"
	BackendSimulated Backend = "simulated"
)

// Algorithm names reported by the services and the health snapshot.
const (
	AlgoKEMReal            = "ML-KEM-768-AES256GCM"
	AlgoKEMSimulated       = "Simulated-ML-KEM-768-AES256GCM"
	AlgoSignatureReal      = "ML-DSA-65"
	AlgoSignatureSimulated = "Simulated-ML-DSA-65-HMAC"
	AlgoEntropyReal        = "QRNG-Hadamard"
	AlgoEntropySimulated   = "CSPRNG"
)

// Capabilities records which backend each cryptographic service runs
// on. It is resolved once at startup from configuration and injected
// into the services; nothing reads backend selection from ambient
// state afterwards, and requests cannot change it.
type Capabilities struct {
	KEM       Backend
	Signature Backend
	Entropy   Backend

	// DemoMode controls whether private key material is echoed back in
	// booking responses. Independent of backend selection and off by
	// default: returning secrets is a documented demonstration
	// weakness, not part of the contract.
	DemoMode bool
}

// CapabilitiesFromConfig validates the configured backend names. An
// unknown name is a startup error, not a silent fallback.
func CapabilitiesFromConfig(cfg config.QuantumConfig) (Capabilities, error) {
	kem, err := parseBackend("kem_backend", cfg.KEMBackend)
	if err != nil {
		return Capabilities{}, err
	}
	sig, err := parseBackend("signature_backend", cfg.SignatureBackend)
	if err != nil {
		return Capabilities{}, err
	}
	entropy, err := parseBackend("entropy_backend", cfg.EntropyBackend)
	if err != nil {
		return Capabilities{}, err
	}
	return Capabilities{KEM: kem, Signature: sig, Entropy: entropy, DemoMode: cfg.DemoMode}, nil
}

func parseBackend(field, value string) (Backend, error) {
	switch value {
	case "", string(BackendSimulated):
		return BackendSimulated, nil
	case string(BackendReal):
		return BackendReal, nil
	default:
		return "", fmt.Errorf("%w: %s %q is not %q or %q", domain.ErrCryptoUnavailable, field, value, BackendReal, BackendSimulated)
	}
}

type ServiceStatus struct {
	Backend   string `json:"backend"`
	Algorithm string `json:"algorithm"`
}

// Status is the observability snapshot of the capability selection.
type Status struct {
	KEM       ServiceStatus `json:"kem"`
	Signature ServiceStatus `json:"signature"`
	Entropy   ServiceStatus `json:"entropy"`
	DemoMode  bool          `json:"demo_mode"`
}

func (c Capabilities) Status() Status {
	pick := func(b Backend, real, simulated string) ServiceStatus {
		if b == BackendReal {
			return ServiceStatus{Backend: string(BackendReal), Algorithm: real}
		}
		return ServiceStatus{Backend: string(BackendSimulated), Algorithm: simulated}
	}
	return Status{
		KEM:       pick(c.KEM, AlgoKEMReal, AlgoKEMSimulated),
		Signature: pick(c.Signature, AlgoSignatureReal, AlgoSignatureSimulated),
		Entropy:   pick(c.Entropy, AlgoEntropyReal, AlgoEntropySimulated),
		DemoMode:  c.DemoMode,
	}
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
