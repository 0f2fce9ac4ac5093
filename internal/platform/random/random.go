// Package random provides the pluggable randomness used for mint-number
// assignment and raffle draws.
//
// Production code uses a ChaCha8 generator seeded from crypto/rand. Tests
// construct a seeded PCG source or a fixed Sequence so outcomes are exact.
package random

import (
	crand "crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() ([32]byte, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}

// NewCryptoSeeded returns a goroutine-safe ChaCha8 source seeded from crypto/rand.
func NewCryptoSeeded() (Source, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return &lockedSource{rng: mrand.New(mrand.NewChaCha8(seed))}, nil
}

// NewSeeded returns a deterministic goroutine-safe source.
func NewSeeded(seed uint64) Source {
	return &lockedSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sequence replays fixed values modulo n, cycling when exhausted.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence returns a Sequence over values.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 || n <= 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Pick returns a uniformly chosen element of values.
func Pick[T any](src Source, values []T) T {
	return values[src.IntN(len(values))]
}

// Shuffle permutes values in place with Fisher–Yates.
func Shuffle[T any](src Source, values []T) {
	for i := len(values) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}
