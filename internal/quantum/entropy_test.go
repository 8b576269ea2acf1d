package quantum

import (
	"crypto/rand"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntropyService_GenerateReference_Length(t *testing.T) {
	testCases := []struct {
		name      string
		requested int
		expected  int
	}{
		{name: "default", requested: DefaultReferenceLength, expected: 8},
		{name: "below minimum clamps up", requested: 1, expected: MinReferenceLength},
		{name: "zero clamps up", requested: 0, expected: MinReferenceLength},
		{name: "negative clamps up", requested: -3, expected: MinReferenceLength},
		{name: "above maximum clamps down", requested: 100, expected: MaxReferenceLength},
		{name: "in range untouched", requested: 12, expected: 12},
	}

	for _, backend := range []Backend{BackendSimulated, BackendReal} {
		service := NewEntropyService(Capabilities{Entropy: backend})
		for _, tc := range testCases {
			t.Run(string(backend)+"/"+tc.name, func(t *testing.T) {
				ref, err := service.GenerateReference(tc.requested)
				require.NoError(t, err)
				assert.Len(t, ref, tc.expected)
			})
		}
	}
}

func TestEntropyService_GenerateReference_Charset(t *testing.T) {
	for _, backend := range []Backend{BackendSimulated, BackendReal} {
		t.Run(string(backend), func(t *testing.T) {
			service := NewEntropyService(Capabilities{Entropy: backend})
			for i := 0; i < 50; i++ {
				ref, err := service.GenerateReference(MaxReferenceLength)
				require.NoError(t, err)
				for _, r := range ref {
					assert.Contains(t, ReferenceCharset, string(r))
				}
				assert.NotContains(t, ref, "I")
				assert.NotContains(t, ref, "O")
				assert.NotContains(t, ref, "0")
				assert.NotContains(t, ref, "1")
			}
		})
	}
}

func TestEntropyService_GenerateReference_NotConstant(t *testing.T) {
	service := NewEntropyService(Capabilities{Entropy: BackendReal})

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := service.GenerateReference(DefaultReferenceLength)
		require.NoError(t, err)
		seen[ref] = true
	}
	// 20 identical draws from a 32^8 space means a broken source.
	assert.Greater(t, len(seen), 1)
}

func TestEntropyService_Algorithm(t *testing.T) {
	assert.Equal(t, AlgoEntropyReal, NewEntropyService(Capabilities{Entropy: BackendReal}).Algorithm())
	assert.Equal(t, AlgoEntropySimulated, NewEntropyService(Capabilities{Entropy: BackendSimulated}).Algorithm())
}

func TestMeasureSuperposition_UniformOutcomes(t *testing.T) {
	zeros, ones := 0, 0
	for i := 0; i < 2000; i++ {
		bit, err := measureSuperposition(rand.Reader)
		require.NoError(t, err)
		switch bit {
		case 0:
			zeros++
		case 1:
			ones++
		default:
			t.Fatalf("measurement produced %d", bit)
		}
	}
	// Loose bounds; a stuck bit fails, fair noise does not.
	assert.Greater(t, zeros, 700)
	assert.Greater(t, ones, 700)
}

func TestMapToCharset_RefillsWhenExhausted(t *testing.T) {
	// An accumulator far too small for ten characters forces the
	// CSPRNG refill path.
	out, err := mapToCharset(big.NewInt(5), 10)
	require.NoError(t, err)
	assert.Len(t, out, 10)
	assert.Equal(t, -1, strings.IndexFunc(out, func(r rune) bool {
		return !strings.ContainsRune(ReferenceCharset, r)
	}))
}
