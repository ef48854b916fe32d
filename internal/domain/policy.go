package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Placement is where classic serial digits sit relative to random digits.
type Placement string

const (
	PlacementPrefix Placement = "prefix"
	PlacementSuffix Placement = "suffix"
)

// ParsePlacement accepts "prefix" or "suffix" in any case.
func ParsePlacement(s string) (Placement, error) {
	switch Placement(strings.ToLower(strings.TrimSpace(s))) {
	case PlacementPrefix:
		return PlacementPrefix, nil
	case PlacementSuffix, "":
		return PlacementSuffix, nil
	}
	return "", fmt.Errorf("%w: placement %q (want prefix or suffix)", ErrInvalidPolicy, s)
}

// GenerationMode is the single strategy active for a run.
type GenerationMode string

const (
	ModeRandom      GenerationMode = "random"
	ModeSerial      GenerationMode = "serial"
	ModeFixedPrefix GenerationMode = "fixed-prefix"
)

// SerialPolicy configures how local parts are built for one generation run.
// The cursor is owned by the policy and advanced only in ModeSerial, so a
// policy must not be shared between concurrent runs.
type SerialPolicy struct {
	Enabled        bool      `json:"enabled" toml:"enabled"`
	Placement      Placement `json:"placement,omitempty" toml:"placement"`
	Start          int64     `json:"start" toml:"start"`
	Step           int64     `json:"step,omitempty" toml:"step"`
	SequentialOnly bool      `json:"sequential_only,omitempty" toml:"sequential_only"`
	FixedPrefixLen *int      `json:"fixed_prefix_len,omitempty" toml:"fixed_prefix_len"`

	cursor    int64
	cursorSet bool
}

// RandomPolicy returns a policy that produces fully random local parts.
func RandomPolicy() *SerialPolicy {
	return &SerialPolicy{Placement: PlacementSuffix, Step: 1}
}

// Mode reports which of the three strategies the policy selects.
func (p *SerialPolicy) Mode() GenerationMode {
	switch {
	case p == nil || !p.Enabled:
		return ModeRandom
	case p.FixedPrefixLen != nil:
		return ModeFixedPrefix
	default:
		return ModeSerial
	}
}

// Cursor returns the serial value the next classic-serial build will use.
func (p *SerialPolicy) Cursor() int64 {
	if !p.cursorSet {
		return p.Start
	}
	return p.cursor
}

// NextSerial returns the current cursor and advances it by Step.
func (p *SerialPolicy) NextSerial() int64 {
	v := p.Cursor()
	step := p.Step
	if step < 1 {
		step = 1
	}
	p.cursor = v + step
	p.cursorSet = true
	return v
}

// Reset rewinds the cursor to Start.
func (p *SerialPolicy) Reset() {
	p.cursor = p.Start
	p.cursorSet = false
}

// FixedPrefix returns the constant leading digits used in ModeFixedPrefix.
func (p *SerialPolicy) FixedPrefix() (string, error) {
	if p.FixedPrefixLen == nil {
		return "", nil
	}
	n := *p.FixedPrefixLen
	start := strconv.FormatInt(p.Start, 10)
	if n <= 0 || n > len(start) {
		return "", fmt.Errorf("%w: fixed prefix length %d for start %s", ErrSerialOverflow, n, start)
	}
	return start[:n], nil
}

// Validate performs the up-front checks that make a run's configuration
// fatal before any candidate is built.
func (p *SerialPolicy) Validate(localLength int) error {
	if localLength < 1 {
		return fmt.Errorf("%w: local length must be >= 1, got %d", ErrInvalidRequest, localLength)
	}
	if p.Mode() == ModeRandom {
		return nil
	}
	if p.Start < 0 {
		return fmt.Errorf("%w: serial start must be >= 0, got %d", ErrInvalidPolicy, p.Start)
	}
	start := strconv.FormatInt(p.Start, 10)

	if p.Mode() == ModeFixedPrefix {
		n := *p.FixedPrefixLen
		if n <= 0 {
			return fmt.Errorf("%w: fixed prefix length must be > 0", ErrInvalidPolicy)
		}
		if n > len(start) {
			return fmt.Errorf("%w: fixed prefix length %d exceeds length of serial start %s (%d)",
				ErrSerialOverflow, n, start, len(start))
		}
		if n > localLength {
			return fmt.Errorf("%w: fixed prefix length %d exceeds local length %d",
				ErrSerialOverflow, n, localLength)
		}
		return nil
	}

	if p.Step < 1 {
		return fmt.Errorf("%w: serial step must be >= 1, got %d", ErrInvalidPolicy, p.Step)
	}
	if p.Placement != PlacementPrefix && p.Placement != PlacementSuffix {
		return fmt.Errorf("%w: placement %q", ErrInvalidPolicy, p.Placement)
	}
	if len(start) > localLength {
		return fmt.Errorf("%w: serial start %s has %d digits, local length is %d",
			ErrSerialOverflow, start, len(start), localLength)
	}
	return nil
}
