package builder

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/numgen/internal/domain"
)

func intPtr(n int) *int { return &n }

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func TestBuild_Random(t *testing.T) {
	b := NewSeeded(1, 2)
	for i := 0; i < 50; i++ {
		got, err := b.Build(10, domain.RandomPolicy())
		require.NoError(t, err)
		if len(got) != 10 || !isDigits(got) {
			t.Fatalf("Build = %q, want 10 digits", got)
		}
	}
}

func TestBuild_Reproducible(t *testing.T) {
	a, b := NewSeeded(42, 7), NewSeeded(42, 7)
	for i := 0; i < 10; i++ {
		x, _ := a.Build(8, nil)
		y, _ := b.Build(8, nil)
		if x != y {
			t.Fatalf("seeded builders diverged at %d: %q vs %q", i, x, y)
		}
	}
}

func TestBuild_FixedPrefix(t *testing.T) {
	b := NewSeeded(3, 4)
	p := &domain.SerialPolicy{Enabled: true, Start: 3000000000, Step: 1, FixedPrefixLen: intPtr(3)}

	for i := 0; i < 20; i++ {
		got, err := b.Build(10, p)
		require.NoError(t, err)
		assert.Len(t, got, 10)
		assert.True(t, strings.HasPrefix(got, "300"), got)
	}
	assert.Equal(t, int64(3000000000), p.Cursor(), "fixed-prefix mode must not consume the cursor")
}

func TestBuild_SerialPlacement(t *testing.T) {
	tests := []struct {
		placement domain.Placement
		check     func(string, string) bool
	}{
		{domain.PlacementSuffix, strings.HasSuffix},
		{domain.PlacementPrefix, strings.HasPrefix},
	}
	for _, tt := range tests {
		t.Run(string(tt.placement), func(t *testing.T) {
			b := NewSeeded(5, 6)
			p := &domain.SerialPolicy{Enabled: true, Placement: tt.placement, Start: 5, Step: 2}
			for _, want := range []string{"5", "7", "9", "11"} {
				got, err := b.Build(6, p)
				require.NoError(t, err)
				assert.Len(t, got, 6)
				assert.True(t, tt.check(got, want), "Build = %q, want serial %s at %s", got, want, tt.placement)
			}
			assert.Equal(t, int64(13), p.Cursor())
		})
	}
}

func TestBuild_SequentialOnly(t *testing.T) {
	b := NewSeeded(0, 0)
	p := &domain.SerialPolicy{Enabled: true, Placement: domain.PlacementSuffix, Start: 42, Step: 1, SequentialOnly: true}

	for _, want := range []string{"000042", "000043", "000044"} {
		got, err := b.Build(6, p)
		require.NoError(t, err)
		if got != want {
			t.Errorf("Build = %q, want %q", got, want)
		}
	}
}

func TestBuild_SequentialZeroStart(t *testing.T) {
	p := &domain.SerialPolicy{Enabled: true, Start: 0, Step: 1, SequentialOnly: true}
	got, err := NewSeeded(0, 0).Build(3, p)
	require.NoError(t, err)
	assert.Equal(t, "000", got)
}

func TestBuild_SerialOverflow(t *testing.T) {
	b := NewSeeded(1, 1)
	p := &domain.SerialPolicy{Enabled: true, Placement: domain.PlacementSuffix, Start: 99, Step: 1, SequentialOnly: true}

	got, err := b.Build(2, p)
	require.NoError(t, err)
	assert.Equal(t, "99", got)

	_, err = b.Build(2, p)
	if !errors.Is(err, domain.ErrSerialOverflow) {
		t.Fatalf("err = %v, want ErrSerialOverflow", err)
	}
}

func TestBuild_FixedPrefixOverflow(t *testing.T) {
	tests := []struct {
		name   string
		start  int64
		n      int
		length int
	}{
		{"longer than start", 30, 5, 10},
		{"longer than local part", 123456, 6, 4},
		{"zero", 30, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.SerialPolicy{Enabled: true, Start: tt.start, FixedPrefixLen: intPtr(tt.n)}
			_, err := NewSeeded(1, 1).Build(tt.length, p)
			if !errors.Is(err, domain.ErrSerialOverflow) {
				t.Errorf("err = %v, want ErrSerialOverflow", err)
			}
		})
	}
}
