// Package app provides application-layer orchestration services.
// It wires domain logic with infrastructure, never the reverse.
package app

import (
	"context"
	"fmt"

	"github.com/tutu-network/numgen/internal/app/builder"
	"github.com/tutu-network/numgen/internal/app/generator"
	"github.com/tutu-network/numgen/internal/app/resolver"
	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/catalog"
	"github.com/tutu-network/numgen/internal/infra/numplan"
	"github.com/tutu-network/numgen/internal/logger"
)

// Service resolves countries and runs generation jobs. It is safe for
// concurrent use: every Run gets its own builder and the caller's policy.
type Service struct {
	Plan      *numplan.Validator
	Countries *catalog.Catalog
	Resolver  *resolver.Resolver
	log       *logger.Logger

	newBuilder func() generator.LocalBuilder
}

// NewService loads the numbering-plan metadata and country catalog.
func NewService(log *logger.Logger) *Service {
	plan := numplan.New()
	countries := catalog.New(plan)
	return &Service{
		Plan:       plan,
		Countries:  countries,
		Resolver:   resolver.New(plan, countries),
		log:        log,
		newBuilder: func() generator.LocalBuilder { return builder.New() },
	}
}

// SetBuilderFactory replaces the per-run builder constructor. Tests use it
// to get reproducible digit streams.
func (s *Service) SetBuilderFactory(f func() generator.LocalBuilder) { s.newBuilder = f }

// Resolve resolves identifier with the given chooser (nil = non-interactive).
func (s *Service) Resolve(identifier string, chooser resolver.Chooser) (domain.CountryResolution, error) {
	return s.Resolver.Resolve(identifier, chooser)
}

// Job is one generation request against a resolved country.
type Job struct {
	Country      domain.CountryResolution
	Count        int
	LocalLength  int
	Policy       *domain.SerialPolicy
	StrictLength bool
}

// Outcome is a finished job.
type Outcome struct {
	Run      domain.Run
	Result   *generator.Result
	Advisory *numplan.Advisory
}

// Records returns the accepted records in insertion order.
func (o *Outcome) Records() []domain.GeneratedRecord { return o.Result.Records.Records() }

// Check runs the configuration checks that must pass before any candidate
// is built: request shape, policy fit and (in strict mode) local length.
// A non-strict length mismatch is returned as an advisory.
func (s *Service) Check(job Job) (*numplan.Advisory, error) {
	if job.Count < 1 {
		return nil, fmt.Errorf("%w: count must be >= 1, got %d", domain.ErrInvalidRequest, job.Count)
	}
	if job.Policy == nil {
		job.Policy = domain.RandomPolicy()
	}
	if err := job.Policy.Validate(job.LocalLength); err != nil {
		return nil, err
	}
	return s.Plan.CheckLength(job.Country.RegionCode, job.LocalLength, job.StrictLength)
}

// Run checks and executes a job. When the run aborts on a serial overflow
// the partial outcome is returned with the error.
func (s *Service) Run(ctx context.Context, job Job, progress generator.ProgressFunc) (*Outcome, error) {
	if job.Policy == nil {
		job.Policy = domain.RandomPolicy()
	}
	adv, err := s.Check(job)
	if err != nil {
		return nil, err
	}
	if adv != nil {
		s.log.Debug("unusual local-part length", "region", adv.Region,
			"local_length", adv.LocalLength, "possible", adv.Possible)
	}

	gen := generator.New(s.newBuilder(), s.Plan, generator.WithLogger(s.log))
	res, err := gen.Generate(ctx, generator.Request{
		RegionCode:  job.Country.RegionCode,
		CallingCode: job.Country.CallingCode,
		Count:       job.Count,
		LocalLength: job.LocalLength,
		Policy:      job.Policy,
	}, progress)
	if res == nil {
		return nil, err
	}

	out := &Outcome{
		Result:   res,
		Advisory: adv,
		Run: domain.Run{
			ID:          res.RunID.String(),
			Country:     job.Country,
			Mode:        job.Policy.Mode(),
			LocalLength: job.LocalLength,
			Requested:   res.Requested,
			Accepted:    res.Records.Len(),
			Attempts:    res.Attempts,
			Exhausted:   res.Exhausted,
			StartedAt:   res.StartedAt,
			Elapsed:     res.Elapsed,
		},
	}
	return out, err
}
