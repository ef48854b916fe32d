// Package numplan binds numgen to the libphonenumber numbering-plan metadata
// (github.com/nyaruka/phonenumbers). Every validity decision is delegated to
// that database; nothing here reimplements area-code or length tables.
package numplan

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/nyaruka/phonenumbers"

	"github.com/tutu-network/numgen/internal/domain"
)

// MaxNationalLength is the longest national number any plan lists. ITU-T
// E.164 caps the full number at 15 digits; a few national plans list up to 17.
const MaxNationalLength = 17

// unknownRegion is what the metadata returns for codes it does not know.
const unknownRegion = "ZZ"

// CanonicalNumber is a candidate that passed validation.
type CanonicalNumber struct {
	E164           string
	NationalNumber string
	RegionCode     string
	CallingCode    int
}

// Validator checks candidates against the embedded numbering-plan metadata.
// The zero value is ready to use and safe for concurrent use.
type Validator struct{}

// New returns a Validator.
func New() *Validator { return &Validator{} }

// Validate parses candidate against region's plan. A candidate is rejected
// with domain.ErrInvalidNumber when it does not parse, is not a possible
// length/shape, or fails the region's validity rules.
func (v *Validator) Validate(region, candidate string) (CanonicalNumber, error) {
	region = domain.NormalizeRegion(region)
	num, err := phonenumbers.Parse(candidate, region)
	if err != nil {
		return CanonicalNumber{}, fmt.Errorf("%w: parse %q: %v", domain.ErrInvalidNumber, candidate, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return CanonicalNumber{}, fmt.Errorf("%w: %q is not a possible number", domain.ErrInvalidNumber, candidate)
	}
	if !phonenumbers.IsValidNumberForRegion(num, region) {
		return CanonicalNumber{}, fmt.Errorf("%w: %q is not valid for %s", domain.ErrInvalidNumber, candidate, region)
	}
	return CanonicalNumber{
		E164:           phonenumbers.Format(num, phonenumbers.E164),
		NationalNumber: strconv.FormatUint(num.GetNationalNumber(), 10),
		RegionCode:     region,
		CallingCode:    int(num.GetCountryCode()),
	}, nil
}

// RegionOf parses an E.164 string and returns the region the number belongs
// to, or "" when it does not parse.
func (v *Validator) RegionOf(e164 string) string {
	num, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(num)
}

// NationalNumberOf parses an E.164 string and returns its national number.
func (v *Validator) NationalNumberOf(e164 string) (string, error) {
	num, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidNumber, err)
	}
	return strconv.FormatUint(num.GetNationalNumber(), 10), nil
}

// CallingCodeForRegion returns the calling code of a region, or 0 when the
// region is unknown to the metadata.
func (v *Validator) CallingCodeForRegion(region string) int {
	return phonenumbers.GetCountryCodeForRegion(domain.NormalizeRegion(region))
}

// RegionsForCallingCode returns the geographic regions served by code in
// deterministic order: the region the metadata designates as main country
// for the code first, then the rest alphabetically. The non-geographic
// "001" entity is never returned.
func (v *Validator) RegionsForCallingCode(code int) []string {
	var regions []string
	for _, r := range phonenumbers.GetRegionCodesForCountryCode(code) {
		if domain.IsRegionCode(r) {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil
	}

	main := phonenumbers.GetRegionCodeForCountryCode(code)
	slices.SortFunc(regions, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == main:
			return -1
		case b == main:
			return 1
		case a < b:
			return -1
		default:
			return 1
		}
	})
	return regions
}

// MainRegionForCallingCode returns the region the metadata designates as
// main country for code, or "" when code is unknown or non-geographic.
func (v *Validator) MainRegionForCallingCode(code int) string {
	r := phonenumbers.GetRegionCodeForCountryCode(code)
	if r == unknownRegion || !domain.IsRegionCode(r) {
		return ""
	}
	return r
}

// SupportedRegions returns every geographic region with a calling code,
// sorted.
func (v *Validator) SupportedRegions() []string {
	all := phonenumbers.GetSupportedRegions()
	regions := make([]string, 0, len(all))
	for r := range all {
		if domain.IsRegionCode(r) && phonenumbers.GetCountryCodeForRegion(r) != 0 {
			regions = append(regions, r)
		}
	}
	slices.Sort(regions)
	return regions
}

// PossibleLengths returns the national-number lengths listed in region's own
// general description. Regions that share a calling code each have their
// own entry. Returns nil for unknown regions.
func (v *Validator) PossibleLengths(region string) []int {
	lengths, ok := regionLengths()[domain.NormalizeRegion(region)]
	if !ok || len(lengths) == 0 {
		return nil
	}
	return slices.Clone(lengths)
}

// regionLengths indexes the general-desc possible lengths by region, read
// once from the embedded metadata collection.
var regionLengths = sync.OnceValue(func() map[string][]int {
	coll, err := phonenumbers.MetadataCollection()
	if err != nil || coll == nil {
		return nil
	}
	index := make(map[string][]int, len(coll.GetMetadata()))
	for _, md := range coll.GetMetadata() {
		id := md.GetId()
		if !domain.IsRegionCode(id) {
			continue
		}
		possible := md.GetGeneralDesc().GetPossibleLength()
		lengths := make([]int, 0, len(possible))
		for _, n := range possible {
			lengths = append(lengths, int(n))
		}
		slices.Sort(lengths)
		index[id] = lengths
	}
	return index
})

// Advisory describes a local length outside the region's possible lengths.
type Advisory struct {
	Region      string
	LocalLength int
	Possible    []int
}

func (a *Advisory) String() string {
	return fmt.Sprintf("requested local-part length (%d) does not match common lengths for region %s: %v",
		a.LocalLength, a.Region, a.Possible)
}

// CheckLength compares localLength with the region's possible lengths before
// generation starts. It is an early warning only: acceptance of each
// candidate is still decided by Validate.
//
// When the length is plausible, or the region has no length data, it returns
// (nil, nil). Otherwise strict mode returns an error wrapping
// domain.ErrUnrealisticLength and non-strict mode returns an Advisory.
func (v *Validator) CheckLength(region string, localLength int, strict bool) (*Advisory, error) {
	region = domain.NormalizeRegion(region)
	possible := v.PossibleLengths(region)
	if len(possible) == 0 || slices.Contains(possible, localLength) {
		return nil, nil
	}
	adv := &Advisory{Region: region, LocalLength: localLength, Possible: possible}
	if strict {
		return adv, fmt.Errorf("%w: %s", domain.ErrUnrealisticLength, adv)
	}
	return adv, nil
}

