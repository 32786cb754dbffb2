// Package entropy provides the seeded random sources the simulation draws from.
// Seed 0 means "pick one": a seed is read from crypto/rand and reported back
// so the run can be replayed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand/v2"
)

// Source is a seeded PCG generator plus the seed it started from.
type Source struct {
	Seed uint64
	*mrand.Rand
}

// New returns a generator for seed. A zero seed is replaced by a fresh one.
func New(seed uint64) *Source {
	if seed == 0 {
		seed = cryptoSeed()
		slog.Debug("entropy seeded from crypto/rand", "seed", seed)
	}
	return &Source{
		Seed: seed,
		Rand: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Derive returns an independent generator for a named sub-stream, so grid
// generation and weather never share draws.
func (s *Source) Derive(stream uint64) *Source {
	seed := s.Seed*0x100000001b3 ^ stream
	if seed == 0 {
		seed = 1
	}
	return &Source{
		Seed: seed,
		Rand: mrand.New(mrand.NewPCG(seed, stream)),
	}
}

func cryptoSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return mrand.Uint64() | 1
	}
	v := binary.LittleEndian.Uint64(buf[:])
	if v == 0 {
		v = 1
	}
	return v
}
