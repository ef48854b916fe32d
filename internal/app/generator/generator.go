// Package generator turns a stream of candidate local parts into a
// deduplicated set of numbering-plan-valid records.
//
// A run is a single synchronous loop: build a candidate, validate it, keep it
// if its E.164 form is new. The loop stops when the target count is reached,
// when count*AttemptFactor candidates have been built, or when the builder
// reports that the serial/prefix configuration cannot fit.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/metrics"
	"github.com/tutu-network/numgen/internal/infra/numplan"
	"github.com/tutu-network/numgen/internal/logger"
)

// AttemptFactor bounds a run to count*AttemptFactor candidate constructions.
const AttemptFactor = 10

// LocalBuilder produces candidate local parts.
type LocalBuilder interface {
	Build(localLength int, policy *domain.SerialPolicy) (string, error)
}

// NumberValidator validates full candidates for a region.
type NumberValidator interface {
	Validate(region, candidate string) (numplan.CanonicalNumber, error)
}

// ProgressFunc is called at every multiple of max(1, target/10) accepted
// records and once at completion. It is informational only.
type ProgressFunc func(accepted, target, attempts int)

// Request describes one run.
type Request struct {
	RegionCode  string
	CallingCode int
	Count       int
	LocalLength int
	Policy      *domain.SerialPolicy
}

// Validate checks the request shape. Policy fit is left to the builder.
func (r Request) Validate() error {
	if !domain.IsRegionCode(r.RegionCode) {
		return fmt.Errorf("%w: region %q", domain.ErrInvalidRequest, r.RegionCode)
	}
	if r.CallingCode <= 0 {
		return fmt.Errorf("%w: calling code must be positive, got %d", domain.ErrInvalidRequest, r.CallingCode)
	}
	if r.Count < 1 {
		return fmt.Errorf("%w: count must be >= 1, got %d", domain.ErrInvalidRequest, r.Count)
	}
	if r.LocalLength < 1 {
		return fmt.Errorf("%w: local length must be >= 1, got %d", domain.ErrInvalidRequest, r.LocalLength)
	}
	return nil
}

// MaxAttempts is the attempt budget for the request.
func (r Request) MaxAttempts() int { return r.Count * AttemptFactor }

// Result is the outcome of a run. Records is always non-nil, even when the
// run was aborted.
type Result struct {
	RunID      uuid.UUID
	Requested  int
	Records    *domain.RecordSet
	Attempts   int
	Invalid    int
	Duplicates int
	Exhausted  bool
	StartedAt  time.Time
	Elapsed    time.Duration
}

// Complete reports whether the target count was reached.
func (r *Result) Complete() bool { return r.Records.Len() == r.Requested }

// Generator runs requests. It holds no per-run state, so one Generator can
// serve many sequential runs; each run owns its policy's cursor.
type Generator struct {
	builder   LocalBuilder
	validator NumberValidator
	log       *logger.Logger
	now       func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(g *Generator) { g.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// New creates a Generator.
func New(b LocalBuilder, v NumberValidator, opts ...Option) *Generator {
	g := &Generator{builder: b, validator: v, log: logger.Nop(), now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate executes one run.
//
// A short result is a valid outcome (Result.Exhausted is set) and is not an
// error. When the builder overflows the run stops and the partial result is
// returned together with an error wrapping domain.ErrSerialOverflow. ctx is
// checked between candidates; cancellation returns the partial result and
// ctx.Err().
func (g *Generator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	policy := req.Policy
	if policy == nil {
		policy = domain.RandomPolicy()
	}
	mode := string(policy.Mode())

	res := &Result{
		RunID:     uuid.New(),
		Requested: req.Count,
		Records:   domain.NewRecordSet(req.Count),
		StartedAt: g.now(),
	}
	generatedAt := res.StartedAt.Truncate(time.Second)
	prefix := fmt.Sprintf("+%d", req.CallingCode)
	maxAttempts := req.MaxAttempts()
	every := max(1, req.Count/10)

	log := g.log.With("run_id", res.RunID.String(), "region", req.RegionCode, "mode", mode)
	log.Debug("generation started", "target", req.Count, "max_attempts", maxAttempts, "local_length", req.LocalLength)

	finish := func(outcome string) {
		res.Elapsed = g.now().Sub(res.StartedAt)
		metrics.RunsTotal.WithLabelValues(mode, outcome).Inc()
		metrics.RunDuration.WithLabelValues(mode).Observe(res.Elapsed.Seconds())
		log.Debug("generation finished", "outcome", outcome, "accepted", res.Records.Len(),
			"attempts", res.Attempts, "invalid", res.Invalid, "duplicates", res.Duplicates)
	}

	for res.Records.Len() < req.Count && res.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			finish(metrics.RunCancelled)
			return res, err
		}
		res.Attempts++

		local, err := g.builder.Build(req.LocalLength, policy)
		if err != nil {
			metrics.CandidatesTotal.WithLabelValues(req.RegionCode, metrics.OutcomeOverflow).Inc()
			finish(metrics.RunAborted)
			if !errors.Is(err, domain.ErrSerialOverflow) {
				err = fmt.Errorf("%w: %v", domain.ErrSerialOverflow, err)
			}
			return res, fmt.Errorf("build candidate %d: %w", res.Attempts, err)
		}

		num, err := g.validator.Validate(req.RegionCode, prefix+local)
		if err != nil {
			res.Invalid++
			metrics.CandidatesTotal.WithLabelValues(req.RegionCode, metrics.OutcomeInvalid).Inc()
			continue
		}

		rec := domain.GeneratedRecord{
			E164Number:     num.E164,
			NationalNumber: num.NationalNumber,
			RegionCode:     req.RegionCode,
			CallingCode:    req.CallingCode,
			GeneratedAt:    generatedAt,
		}
		if !res.Records.Add(rec) {
			res.Duplicates++
			metrics.CandidatesTotal.WithLabelValues(req.RegionCode, metrics.OutcomeDuplicate).Inc()
			continue
		}
		metrics.CandidatesTotal.WithLabelValues(req.RegionCode, metrics.OutcomeAccepted).Inc()

		n := res.Records.Len()
		if progress != nil && (n%every == 0 || n == req.Count) {
			progress(n, req.Count, res.Attempts)
		}
	}

	if res.Records.Len() < req.Count {
		res.Exhausted = true
		if progress != nil {
			progress(res.Records.Len(), req.Count, res.Attempts)
		}
		finish(metrics.RunExhausted)
		return res, nil
	}
	finish(metrics.RunComplete)
	return res, nil
}
