package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestGeneratedRecord_Row(t *testing.T) {
	r := GeneratedRecord{
		E164Number:     "+14155550123",
		NationalNumber: "4155550123",
		RegionCode:     "US",
		CallingCode:    1,
		GeneratedAt:    time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC),
	}
	want := []string{"+14155550123", "4155550123", "US", "1", "2024-01-02T03:04:05"}
	if got := r.Row(); !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %v, want %v", got, want)
	}
	if len(r.Row()) != len(RecordColumns) {
		t.Errorf("Row() has %d fields, RecordColumns has %d", len(r.Row()), len(RecordColumns))
	}
}

func TestRecordSet(t *testing.T) {
	s := NewRecordSet(2)
	a := GeneratedRecord{E164Number: "+1"}
	b := GeneratedRecord{E164Number: "+2"}

	if !s.Add(a) || !s.Add(b) {
		t.Fatal("Add() of new records should succeed")
	}
	if s.Add(GeneratedRecord{E164Number: "+1", NationalNumber: "x"}) {
		t.Error("Add() of a duplicate E.164 number should fail")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has("+2") || s.Has("+3") {
		t.Error("Has() mismatch")
	}
	if got, ok := s.Get("+1"); !ok || got.NationalNumber != "" {
		t.Errorf("Get(+1) = %+v, %v; first insert must win", got, ok)
	}

	recs := s.Records()
	if recs[0].E164Number != "+1" || recs[1].E164Number != "+2" {
		t.Errorf("Records() = %v, want insertion order", recs)
	}
}

func TestRecordSet_Nil(t *testing.T) {
	var s *RecordSet
	if s.Len() != 0 || s.Records() != nil {
		t.Error("nil RecordSet should be empty")
	}
}

func TestCountryHelpers(t *testing.T) {
	if !IsRegionCode("pk") || IsRegionCode("001") || IsRegionCode("P1") {
		t.Error("IsRegionCode mismatch")
	}
	if got := NormalizeRegion(" gb "); got != "GB" {
		t.Errorf("NormalizeRegion = %q, want GB", got)
	}
	c := CountryResolution{RegionCode: "PK", CallingCode: 92, DisplayName: "Pakistan"}
	if got := c.String(); got != "Pakistan (PK, +92)" {
		t.Errorf("String() = %q", got)
	}
}
