package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tutu-network/numgen/internal/domain"
)

// JobSpec is one [[job]] table of a job file.
//
//	[[job]]
//	country = "Pakistan"
//	count = 50
//	local_length = 10
//
//	[job.serial]
//	enabled = true
//	start = 3000000000
//	fixed_prefix_len = 3
type JobSpec struct {
	Country        string              `toml:"country"`
	Count          int                 `toml:"count"`
	LocalLength    int                 `toml:"local_length"`
	StrictLength   bool                `toml:"strict_length"`
	FilenamePrefix string              `toml:"filename_prefix"`
	Format         string              `toml:"format"`
	Serial         domain.SerialPolicy `toml:"serial"`
}

// JobFile is a batch of generation jobs.
type JobFile struct {
	Jobs []JobSpec `toml:"job"`
}

// ParseJobFile decodes and validates a TOML job file. Serial step defaults
// to 1 and placement to suffix.
func ParseJobFile(r io.Reader) (*JobFile, error) {
	var jf JobFile
	md, err := toml.NewDecoder(r).Decode(&jf)
	if err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse job file: unknown keys %v", undecoded)
	}
	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("%w: job file has no [[job]] entries", domain.ErrInvalidRequest)
	}

	var errs []error
	for i := range jf.Jobs {
		j := &jf.Jobs[i]
		if j.Serial.Step == 0 {
			j.Serial.Step = 1
		}
		if j.Serial.Placement == "" {
			j.Serial.Placement = domain.PlacementSuffix
		} else {
			p, err := domain.ParsePlacement(string(j.Serial.Placement))
			if err != nil {
				errs = append(errs, fmt.Errorf("job %d: %w", i+1, err))
				continue
			}
			j.Serial.Placement = p
		}
		if err := j.validate(); err != nil {
			errs = append(errs, fmt.Errorf("job %d: %w", i+1, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &jf, nil
}

func (j *JobSpec) validate() error {
	if strings.TrimSpace(j.Country) == "" {
		return fmt.Errorf("%w: country is required", domain.ErrInvalidRequest)
	}
	if j.Count < 1 {
		return fmt.Errorf("%w: count must be >= 1", domain.ErrInvalidRequest)
	}
	if j.LocalLength < 1 {
		return fmt.Errorf("%w: local_length must be >= 1", domain.ErrInvalidRequest)
	}
	return j.Serial.Validate(j.LocalLength)
}

// Policy returns a fresh copy of the job's serial policy with its cursor at
// start.
func (j *JobSpec) Policy() *domain.SerialPolicy {
	p := j.Serial
	p.Reset()
	return &p
}
