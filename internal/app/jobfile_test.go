package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/numgen/internal/domain"
)

const sampleJobs = `
[[job]]
country = "PK"
count = 20
local_length = 10

[[job]]
country = "+44"
count = 5
local_length = 10
format = "sqlite"
filename_prefix = "uk"

[job.serial]
enabled = true
placement = "PREFIX"
start = 7400
`

func TestParseJobFile(t *testing.T) {
	jf, err := ParseJobFile(strings.NewReader(sampleJobs))
	require.NoError(t, err)
	require.Len(t, jf.Jobs, 2)

	first := jf.Jobs[0]
	assert.Equal(t, "PK", first.Country)
	assert.Equal(t, domain.ModeRandom, first.Serial.Mode())

	second := jf.Jobs[1]
	assert.Equal(t, "sqlite", second.Format)
	assert.Equal(t, "uk", second.FilenamePrefix)
	assert.Equal(t, domain.ModeSerial, second.Serial.Mode())
	assert.Equal(t, domain.PlacementPrefix, second.Serial.Placement)
	assert.Equal(t, int64(1), second.Serial.Step, "step defaults to 1")
}

func TestJobSpec_PolicyIsFresh(t *testing.T) {
	jf, err := ParseJobFile(strings.NewReader(sampleJobs))
	require.NoError(t, err)

	p := jf.Jobs[1].Policy()
	p.NextSerial()
	p.NextSerial()

	again := jf.Jobs[1].Policy()
	assert.Equal(t, int64(7400), again.Cursor(), "each Policy() call starts at the configured start")
}

func TestParseJobFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ``},
		{"syntax", `[[job]`},
		{"unknown key", "[[job]]\ncountry = \"PK\"\ncount = 1\nlocal_length = 10\ncolour = \"red\"\n"},
		{"missing country", "[[job]]\ncount = 1\nlocal_length = 10\n"},
		{"zero count", "[[job]]\ncountry = \"PK\"\nlocal_length = 10\n"},
		{"bad placement", "[[job]]\ncountry = \"PK\"\ncount = 1\nlocal_length = 10\n[job.serial]\nenabled = true\nplacement = \"middle\"\n"},
		{"serial overflow", "[[job]]\ncountry = \"PK\"\ncount = 1\nlocal_length = 3\n[job.serial]\nenabled = true\nstart = 12345\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobFile(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestParseJobFile_ReportsEveryBadJob(t *testing.T) {
	in := "[[job]]\ncountry = \"PK\"\nlocal_length = 10\n\n[[job]]\ncount = 1\nlocal_length = 10\n"
	_, err := ParseJobFile(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job 1")
	assert.Contains(t, err.Error(), "job 2")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
