// Package builder produces candidate local-part digit strings under the
// random, classic-serial and fixed-prefix policies.
package builder

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/tutu-network/numgen/internal/domain"
)

// Builder draws random digits from its own source. It is not safe for
// concurrent use.
type Builder struct {
	rng *rand.Rand
}

// New returns a Builder seeded from the runtime's random source.
func New() *Builder {
	return &Builder{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Builder with a reproducible digit stream.
func NewSeeded(seed1, seed2 uint64) *Builder {
	return &Builder{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Build returns one candidate of exactly localLength digits.
//
// Only the classic-serial branch advances policy's cursor. Any overflow
// is reported, wrapping domain.ErrSerialOverflow, before a random digit is
// drawn.
func (b *Builder) Build(localLength int, policy *domain.SerialPolicy) (string, error) {
	if localLength < 1 {
		return "", fmt.Errorf("%w: local length must be >= 1, got %d", domain.ErrSerialOverflow, localLength)
	}

	switch policy.Mode() {
	case domain.ModeRandom:
		return b.digits(localLength), nil

	case domain.ModeFixedPrefix:
		prefix, err := policy.FixedPrefix()
		if err != nil {
			return "", err
		}
		if len(prefix) > localLength {
			return "", fmt.Errorf("%w: fixed prefix %q length %d exceeds local length %d",
				domain.ErrSerialOverflow, prefix, len(prefix), localLength)
		}
		return prefix + b.digits(localLength-len(prefix)), nil
	}

	serial := strconv.FormatInt(policy.NextSerial(), 10)
	if len(serial) > localLength {
		return "", fmt.Errorf("%w: serial %s length %d exceeds local length %d",
			domain.ErrSerialOverflow, serial, len(serial), localLength)
	}

	if policy.SequentialOnly {
		return strings.Repeat("0", localLength-len(serial)) + serial, nil
	}

	fill := b.digits(localLength - len(serial))
	if policy.Placement == domain.PlacementPrefix {
		return serial + fill, nil
	}
	return fill + serial, nil
}

func (b *Builder) digits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = '0' + byte(b.rng.IntN(10))
	}
	return string(buf)
}
