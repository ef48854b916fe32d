package domain

import (
	"strconv"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for generation timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// GeneratedRecord is one validated, canonicalized number. Records are created
// by the generator on acceptance and never modified afterwards.
type GeneratedRecord struct {
	E164Number     string    `json:"e164_number"`
	NationalNumber string    `json:"national_number"`
	RegionCode     string    `json:"country_iso"`
	CallingCode    int       `json:"country_calling_code"`
	GeneratedAt    time.Time `json:"-"`
}

// Timestamp returns the run-level generation timestamp in ISO-8601 form.
func (r GeneratedRecord) Timestamp() string {
	return r.GeneratedAt.Format(TimestampLayout)
}

// Row returns the record's fields in export column order.
func (r GeneratedRecord) Row() []string {
	return []string{
		r.E164Number,
		r.NationalNumber,
		r.RegionCode,
		strconv.Itoa(r.CallingCode),
		r.Timestamp(),
	}
}

// RecordColumns is the fixed export column order.
var RecordColumns = []string{
	"e164_number",
	"national_number",
	"country_iso",
	"country_calling_code",
	"generation_timestamp",
}

// RecordSet is an insertion-ordered set of records keyed by E.164 number.
type RecordSet struct {
	order []GeneratedRecord
	index map[string]int
}

// NewRecordSet returns an empty set with room for n records.
func NewRecordSet(n int) *RecordSet {
	return &RecordSet{
		order: make([]GeneratedRecord, 0, n),
		index: make(map[string]int, n),
	}
}

// Add inserts r unless its E.164 number is already present. It reports
// whether the record was inserted.
func (s *RecordSet) Add(r GeneratedRecord) bool {
	if _, ok := s.index[r.E164Number]; ok {
		return false
	}
	s.index[r.E164Number] = len(s.order)
	s.order = append(s.order, r)
	return true
}

// Has reports whether an E.164 number is in the set.
func (s *RecordSet) Has(e164 string) bool {
	_, ok := s.index[e164]
	return ok
}

// Get returns the record for an E.164 number.
func (s *RecordSet) Get(e164 string) (GeneratedRecord, bool) {
	i, ok := s.index[e164]
	if !ok {
		return GeneratedRecord{}, false
	}
	return s.order[i], true
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Records returns the records in insertion order. The slice must not be
// modified.
func (s *RecordSet) Records() []GeneratedRecord {
	if s == nil {
		return nil
	}
	return s.order
}
