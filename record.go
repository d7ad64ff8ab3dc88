package iplocate

import (
	"strconv"
	"strings"
)

// Record is a single row of the range table, covering the contiguous
// address interval [StartIP, EndIP].
type Record struct {
	StartIP      uint32
	EndIP        uint32
	CountryCode  string
	CountryName  string
	Region       string
	City         string
	Latitude     float64
	Longitude    float64
	Zip          string
	Timezone     string
	CountryPhone string
	AreaPhone    string
}

// CountryInfo is a country-code side table entry. Region and City come
// from whichever row for the code was read last.
type CountryInfo struct {
	Code   string
	Name   string
	Region string
	City   string
}

// Fields returns the ten result fields in output order. Coordinates are
// rendered with the minimal number of digits, so values round-trip the
// source file verbatim.
func (r *Record) Fields() []string {
	return []string{
		r.CountryCode,
		r.CountryName,
		r.Region,
		r.City,
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		r.Zip,
		r.Timezone,
		r.CountryPhone,
		r.AreaPhone,
	}
}

// String renders the record the way the lookup tool prints it.
func (r *Record) String() string {
	return strings.Join(r.Fields(), "; ")
}
