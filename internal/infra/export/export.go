// Package export writes generated records to durable files: CSV (the
// default), plain E.164 text, or a SQLite database.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tutu-network/numgen/internal/domain"
)

// Format selects the export file type.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts csv, txt/text and sqlite/db.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q (want csv, txt or sqlite)", domain.ErrUnknownFormat, s)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return "db"
	}
	return string(f)
}

// FilenameTimeLayout is the timestamp embedded in export filenames.
const FilenameTimeLayout = "20060102_150405"

// BuildFilename returns "<prefix>_<REGION><cc>_<YYYYMMDD_HHMMSS>.<ext>".
// When the region is not a two-letter code the sanitized display name is used
// instead.
func BuildFilename(prefix string, country domain.CountryResolution, f Format, at time.Time) string {
	if prefix == "" {
		prefix = "numbers"
	}
	countryPart := strings.ToUpper(country.RegionCode)
	if len(country.RegionCode) != 2 {
		countryPart = SanitizeName(country.DisplayName)
	}
	return fmt.Sprintf("%s_%s%d_%s.%s", prefix, countryPart, country.CallingCode,
		at.Format(FilenameTimeLayout), f.Ext())
}

// SanitizeName keeps only letters and digits.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
