package quantum

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/quantumair/qbooking/internal/domain"
)

// ReferenceCharset is the alphabet for booking references. It excludes
// the visually ambiguous characters I, O, 0 and 1.
const ReferenceCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	MinReferenceLength     = 4
	MaxReferenceLength     = 32
	DefaultReferenceLength = 8

	// Each charset character consumes roughly 5 bits; drawing 6 per
	// character keeps the modulo mapping from starving early.
	bitsPerReferenceChar = 6
)

type entropySource interface {
	Reference(length int) (string, error)
	Algorithm() string
}

// EntropyService produces unpredictable, human-typeable booking
// references from either a simulated quantum circuit or a
// cryptographically secure pseudo-random source.
type EntropyService struct {
	source entropySource
}

func NewEntropyService(caps Capabilities) *EntropyService {
	if caps.Entropy == BackendReal {
		return &EntropyService{source: circuitSource{}}
	}
	return &EntropyService{source: csprngSource{}}
}

// GenerateReference returns a reference of the requested length,
// clamped to [MinReferenceLength, MaxReferenceLength].
func (s *EntropyService) GenerateReference(length int) (string, error) {
	if length < MinReferenceLength {
		length = MinReferenceLength
	}
	if length > MaxReferenceLength {
		length = MaxReferenceLength
	}
	ref, err := s.source.Reference(length)
	if err != nil {
		return "", fmt.Errorf("%w: reference generation: %v", domain.ErrCryptoFailure, err)
	}
	return ref, nil
}

func (s *EntropyService) Algorithm() string {
	return s.source.Algorithm()
}

// circuitSource simulates a quantum random number generator: each raw
// bit is the measurement outcome of an independent qubit prepared in
// the equal superposition (|0>+|1>)/sqrt(2) by a Hadamard gate.
type circuitSource struct{}

func (circuitSource) Reference(length int) (string, error) {
	acc := new(big.Int)
	for i := 0; i < length*bitsPerReferenceChar; i++ {
		bit, err := measureSuperposition(rand.Reader)
		if err != nil {
			return "", err
		}
		acc.Lsh(acc, 1)
		if bit == 1 {
			acc.SetBit(acc, 0, 1)
		}
	}
	return mapToCharset(acc, length)
}

func (circuitSource) Algorithm() string {
	return AlgoEntropyReal
}

// measureSuperposition collapses one equal-superposition qubit. Both
// outcomes have amplitude 1/sqrt(2), so the classical bit is uniform.
func measureSuperposition(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0] & 1, nil
}

// mapToCharset converts the accumulated bits to charset characters by
// repeated modulo reduction, topping the accumulator up with fresh
// CSPRNG bits if it runs out before the requested length is reached.
func mapToCharset(acc *big.Int, length int) (string, error) {
	size := big.NewInt(int64(len(ReferenceCharset)))
	mod := new(big.Int)
	out := make([]byte, 0, length)
	for len(out) < length {
		acc.DivMod(acc, size, mod)
		out = append(out, ReferenceCharset[mod.Int64()])
		if acc.Sign() == 0 && len(out) < length {
			limit := new(big.Int).Exp(size, big.NewInt(int64(length-len(out))), nil)
			fresh, err := rand.Int(rand.Reader, limit)
			if err != nil {
				return "", err
			}
			acc.Set(fresh)
		}
	}
	return string(out), nil
}

// csprngSource draws every character independently and uniformly from
// the charset using the operating system's secure random source.
type csprngSource struct{}

func (csprngSource) Reference(length int) (string, error) {
	size := big.NewInt(int64(len(ReferenceCharset)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = ReferenceCharset[idx.Int64()]
	}
	return string(out), nil
}

func (csprngSource) Algorithm() string {
	return AlgoEntropySimulated
}
