// Package domain holds numgen's pure types: country resolutions, serial
// policies and generated records. Nothing here touches the numbering-plan
// database or the filesystem.
package domain

import (
	"fmt"
	"strings"
)

// CountryResolution is the immutable result of resolving a free-form country
// identifier.
type CountryResolution struct {
	RegionCode  string `json:"region_code"`
	CallingCode int    `json:"calling_code"`
	DisplayName string `json:"display_name"`
}

// String renders "Pakistan (PK, +92)".
func (c CountryResolution) String() string {
	return fmt.Sprintf("%s (%s, +%d)", c.DisplayName, c.RegionCode, c.CallingCode)
}

// IsRegionCode reports whether s has the canonical region-code shape:
// exactly two ASCII letters.
func IsRegionCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// NormalizeRegion upper-cases and trims a region code.
func NormalizeRegion(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RegionOption is one entry offered when a calling code is shared by several
// regions.
type RegionOption struct {
	RegionCode  string `json:"region_code"`
	DisplayName string `json:"display_name"`
}
