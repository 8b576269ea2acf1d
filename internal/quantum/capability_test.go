package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/domain"
)

func TestCapabilitiesFromConfig(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.QuantumConfig
		expected Capabilities
	}{
		{
			name:     "empty defaults to simulated",
			cfg:      config.QuantumConfig{},
			expected: Capabilities{KEM: BackendSimulated, Signature: BackendSimulated, Entropy: BackendSimulated},
		},
		{
			name: "all real",
			cfg: config.QuantumConfig{
				KEMBackend:       "real",
				SignatureBackend: "real",
				EntropyBackend:   "real",
			},
			expected: Capabilities{KEM: BackendReal, Signature: BackendReal, Entropy: BackendReal},
		},
		{
			name: "mixed with demo mode",
			cfg: config.QuantumConfig{
				KEMBackend:       "real",
				SignatureBackend: "simulated",
				DemoMode:         true,
			},
			expected: Capabilities{KEM: BackendReal, Signature: BackendSimulated, Entropy: BackendSimulated, DemoMode: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caps, err := CapabilitiesFromConfig(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, caps)
		})
	}
}

func TestCapabilitiesFromConfig_UnknownBackend(t *testing.T) {
	for _, cfg := range []config.QuantumConfig{
		{KEMBackend: "quantum"},
		{SignatureBackend: "hardware"},
		{EntropyBackend: "dice"},
	} {
		_, err := CapabilitiesFromConfig(cfg)
		assert.ErrorIs(t, err, domain.ErrCryptoUnavailable)
	}
}

func TestCapabilities_Status(t *testing.T) {
	caps := Capabilities{
		KEM:       BackendReal,
		Signature: BackendSimulated,
		Entropy:   BackendReal,
		DemoMode:  true,
	}

	status := caps.Status()

	assert.Equal(t, ServiceStatus{Backend: "real", Algorithm: AlgoKEMReal}, status.KEM)
	assert.Equal(t, ServiceStatus{Backend: "simulated", Algorithm: AlgoSignatureSimulated}, status.Signature)
	assert.Equal(t, ServiceStatus{Backend: "real", Algorithm: AlgoEntropyReal}, status.Entropy)
	assert.True(t, status.DemoMode)
}
