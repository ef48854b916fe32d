// Package resolver maps a free-form country identifier (ISO code, country
// name or calling code) to a region and calling code.
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/catalog"
)

// Plan is the numbering-plan view the resolver needs.
type Plan interface {
	RegionsForCallingCode(code int) []string
	CallingCodeForRegion(region string) int
}

// Countries is the country-name view the resolver needs.
type Countries interface {
	Lookup(alpha2 string) (catalog.Entry, bool)
	Search(query string) []catalog.Entry
	Name(region string) string
}

// Chooser picks one of several regions sharing a calling code. It returns a
// zero-based index into options.
type Chooser interface {
	Choose(callingCode int, options []domain.RegionOption) (int, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(callingCode int, options []domain.RegionOption) (int, error)

// Choose calls f.
func (f ChooserFunc) Choose(callingCode int, options []domain.RegionOption) (int, error) {
	return f(callingCode, options)
}

// First is the non-interactive strategy: always the first option in the
// plan's deterministic order.
var First Chooser = ChooserFunc(func(int, []domain.RegionOption) (int, error) { return 0, nil })

// Resolver resolves identifiers. It holds no mutable state.
type Resolver struct {
	plan      Plan
	countries Countries
}

// New creates a Resolver.
func New(plan Plan, countries Countries) *Resolver {
	return &Resolver{plan: plan, countries: countries}
}

// Resolve maps identifier to a CountryResolution. Digit-only input (with an
// optional leading "+") is tried as a calling code first; when that finds no
// region the input falls through to alpha-2 and name lookup. A nil chooser
// behaves like First.
func (r *Resolver) Resolve(identifier string, chooser Chooser) (domain.CountryResolution, error) {
	ident := strings.TrimSpace(identifier)
	if ident == "" {
		return domain.CountryResolution{}, fmt.Errorf("%w: empty identifier", domain.ErrCountryNotFound)
	}

	if code, ok := parseCallingCode(ident); ok {
		res, found, err := r.byCallingCode(code, chooser)
		if err != nil {
			return domain.CountryResolution{}, err
		}
		if found {
			return res, nil
		}
	}

	return r.byNameOrISO(ident)
}

// Options returns the ordered choices offered for a shared calling code.
func (r *Resolver) Options(code int) []domain.RegionOption {
	regions := r.plan.RegionsForCallingCode(code)
	opts := make([]domain.RegionOption, 0, len(regions))
	for _, region := range regions {
		opts = append(opts, domain.RegionOption{RegionCode: region, DisplayName: r.countries.Name(region)})
	}
	return opts
}

func (r *Resolver) byCallingCode(code int, chooser Chooser) (domain.CountryResolution, bool, error) {
	opts := r.Options(code)
	if len(opts) == 0 {
		return domain.CountryResolution{}, false, nil
	}

	idx := 0
	if len(opts) > 1 {
		if chooser == nil {
			chooser = First
		}
		var err error
		idx, err = chooser.Choose(code, opts)
		if err != nil {
			return domain.CountryResolution{}, false, fmt.Errorf("choose region for +%d: %w", code, err)
		}
		if idx < 0 || idx >= len(opts) {
			return domain.CountryResolution{}, false, fmt.Errorf("%w: index %d out of range for +%d", domain.ErrNoSelection, idx, code)
		}
	}

	return domain.CountryResolution{
		RegionCode:  opts[idx].RegionCode,
		CallingCode: code,
		DisplayName: opts[idx].DisplayName,
	}, true, nil
}

func (r *Resolver) byNameOrISO(ident string) (domain.CountryResolution, error) {
	if len(ident) == 2 {
		if e, ok := r.countries.Lookup(ident); ok {
			if res, ok := r.fromEntry(e); ok {
				return res, nil
			}
			return domain.CountryResolution{}, fmt.Errorf("%w: %q has no calling code", domain.ErrCountryNotFound, ident)
		}
	}

	matches := r.countries.Search(ident)
	if len(matches) == 0 {
		return domain.CountryResolution{}, fmt.Errorf("%w: %q", domain.ErrCountryNotFound, ident)
	}
	if res, ok := r.fromEntry(matches[0]); ok {
		return res, nil
	}
	return domain.CountryResolution{}, fmt.Errorf("%w: %q has no calling code", domain.ErrCountryNotFound, ident)
}

func (r *Resolver) fromEntry(e catalog.Entry) (domain.CountryResolution, bool) {
	region := domain.NormalizeRegion(e.RegionCode)
	code := r.plan.CallingCodeForRegion(region)
	if code == 0 {
		return domain.CountryResolution{}, false
	}
	return domain.CountryResolution{RegionCode: region, CallingCode: code, DisplayName: e.Name}, true
}

// parseCallingCode accepts "44", "+44" and rejects anything with non-digits.
func parseCallingCode(s string) (int, bool) {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	code, err := strconv.Atoi(s)
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}
