package domain

import (
	"errors"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in      string
		want    Placement
		wantErr bool
	}{
		{"prefix", PlacementPrefix, false},
		{"SUFFIX", PlacementSuffix, false},
		{" Prefix ", PlacementPrefix, false},
		{"", PlacementSuffix, false},
		{"middle", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePlacement(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlacement(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlacement(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("ParsePlacement(%q) err = %v, want ErrInvalidPolicy", tt.in, err)
		}
	}
}

func TestSerialPolicy_Mode(t *testing.T) {
	tests := []struct {
		name   string
		policy *SerialPolicy
		want   GenerationMode
	}{
		{"nil", nil, ModeRandom},
		{"disabled", &SerialPolicy{FixedPrefixLen: intPtr(3)}, ModeRandom},
		{"serial", &SerialPolicy{Enabled: true}, ModeSerial},
		{"fixed prefix", &SerialPolicy{Enabled: true, FixedPrefixLen: intPtr(3)}, ModeFixedPrefix},
	}
	for _, tt := range tests {
		if got := tt.policy.Mode(); got != tt.want {
			t.Errorf("%s: Mode() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSerialPolicy_Cursor(t *testing.T) {
	p := &SerialPolicy{Enabled: true, Start: 10, Step: 5}
	if got := p.Cursor(); got != 10 {
		t.Fatalf("Cursor() = %d, want 10", got)
	}

	for _, want := range []int64{10, 15, 20} {
		if got := p.NextSerial(); got != want {
			t.Errorf("NextSerial() = %d, want %d", got, want)
		}
	}
	if got := p.Cursor(); got != 25 {
		t.Errorf("Cursor() = %d, want 25", got)
	}

	p.Reset()
	if got := p.Cursor(); got != 10 {
		t.Errorf("Cursor() after Reset = %d, want 10", got)
	}
}

func TestSerialPolicy_NextSerialZeroStep(t *testing.T) {
	p := &SerialPolicy{Enabled: true, Start: 1}
	p.NextSerial()
	if got := p.Cursor(); got != 2 {
		t.Errorf("Cursor() = %d, want 2 (step < 1 advances by 1)", got)
	}
}

func TestSerialPolicy_FixedPrefix(t *testing.T) {
	p := &SerialPolicy{Enabled: true, Start: 3000000000, FixedPrefixLen: intPtr(3)}
	got, err := p.FixedPrefix()
	if err != nil {
		t.Fatalf("FixedPrefix() error: %v", err)
	}
	if got != "300" {
		t.Errorf("FixedPrefix() = %q, want %q", got, "300")
	}

	p.FixedPrefixLen = intPtr(11)
	if _, err := p.FixedPrefix(); !errors.Is(err, ErrSerialOverflow) {
		t.Errorf("FixedPrefix() err = %v, want ErrSerialOverflow", err)
	}
}

func TestSerialPolicy_Validate(t *testing.T) {
	tests := []struct {
		name   string
		policy *SerialPolicy
		length int
		want   error
	}{
		{"random", RandomPolicy(), 10, nil},
		{"zero length", RandomPolicy(), 0, ErrInvalidRequest},
		{"serial fits", &SerialPolicy{Enabled: true, Placement: PlacementSuffix, Start: 9999999998, Step: 1}, 10, nil},
		{"serial too long", &SerialPolicy{Enabled: true, Placement: PlacementSuffix, Start: 12345678901, Step: 1}, 10, ErrSerialOverflow},
		{"negative start", &SerialPolicy{Enabled: true, Placement: PlacementSuffix, Start: -1, Step: 1}, 10, ErrInvalidPolicy},
		{"zero step", &SerialPolicy{Enabled: true, Placement: PlacementSuffix, Start: 1}, 10, ErrInvalidPolicy},
		{"bad placement", &SerialPolicy{Enabled: true, Placement: "middle", Start: 1, Step: 1}, 10, ErrInvalidPolicy},
		{"fixed prefix fits", &SerialPolicy{Enabled: true, Start: 3000000000, FixedPrefixLen: intPtr(3)}, 10, nil},
		{"fixed prefix zero", &SerialPolicy{Enabled: true, Start: 30, FixedPrefixLen: intPtr(0)}, 10, ErrInvalidPolicy},
		{"fixed prefix past start", &SerialPolicy{Enabled: true, Start: 30, FixedPrefixLen: intPtr(3)}, 10, ErrSerialOverflow},
		{"fixed prefix past length", &SerialPolicy{Enabled: true, Start: 123456, FixedPrefixLen: intPtr(5)}, 4, ErrSerialOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.length)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate(%d) error: %v", tt.length, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%d) err = %v, want %v", tt.length, err, tt.want)
			}
		})
	}
}
