// Package health runs periodic self-checks for serve mode: the embedded
// numbering-plan metadata still validates a known number and the export
// directory is writable.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tutu-network/numgen/internal/infra/numplan"
)

// Known-good number used to probe the numbering-plan metadata.
const (
	probeRegion = "GB"
	probeNumber = "+447400123456"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Validator is the numbering-plan call the probe exercises.
type Validator interface {
	Validate(region, candidate string) (numplan.CanonicalNumber, error)
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker for the numbering plan and the export
// directory. A missing export directory is recreated.
func NewChecker(plan Validator, outputDir string) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "numbering_plan",
				CheckFn: func(ctx context.Context) error {
					return checkPlan(plan)
				},
			},
			{
				Name: "output_dir",
				CheckFn: func(ctx context.Context) error {
					return checkWritable(outputDir)
				},
				RecoverFn: func(ctx context.Context) error {
					return os.MkdirAll(outputDir, 0o755)
				},
			},
		},
	}
}

// Run starts the health check loop and blocks until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			if check.RecoverFn != nil && check.RecoverFn(ctx) == nil {
				if err := check.CheckFn(ctx); err == nil {
					s.Error = ""
				}
			}
		}
		s.Healthy = s.Error == ""
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkPlan(plan Validator) error {
	got, err := plan.Validate(probeRegion, probeNumber)
	if err != nil {
		return fmt.Errorf("probe %s: %w", probeNumber, err)
	}
	if got.E164 != probeNumber {
		return fmt.Errorf("probe %s formatted as %s", probeNumber, got.E164)
	}
	return nil
}

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check output dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".numgen-health-*")
	if err != nil {
		return fmt.Errorf("output dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
