package iplocate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidAddress is returned when an input is not a four-octet
	// dotted address.
	ErrInvalidAddress = errors.New("not a valid IPv4 address")

	// ErrNotFound is returned when no range covers a valid address, or a
	// country code has no entry.
	ErrNotFound = errors.New("address not covered by the range table")
)

// Locator resolves a dotted-quad address to a range record.
type Locator interface {
	Lookup(ip string) (*Record, error)
}

// parseIPv4 converts a dotted quad to its numeric form and the bucket
// key it hashes to. Octet values are not range checked; the table is
// keyed purely on the numeric composition, matching the source feed.
func parseIPv4(ip string) (uint64, string, error) {
	parts := strings.Split(ip, ".")

	if len(parts) != 4 {
		return 0, "", ErrInvalidAddress
	}

	var num uint64

	for _, part := range parts {
		octet, err := strconv.ParseUint(part, 10, 32)

		if err != nil {
			return 0, "", ErrInvalidAddress
		}

		num = num<<8 + octet
	}

	return num, bucketKey(num), nil
}

// Lookup resolves ip to its covering range record.
//
// The natural bucket for an address can start past it, or not exist at
// all, when the covering range begins in an earlier bucket; in that case
// the search backtracks one key at a time until a usable bucket appears.
// Within the bucket, records are scanned in rising order and the first
// whose end bound covers the address wins. The start bound is
// deliberately not rechecked at that point: when the table has a hole,
// the nearest following record is accepted, and downstream consumers
// rely on that behavior.
func (t *Table) Lookup(ip string) (*Record, error) {
	num, key, err := parseIPv4(ip)

	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if rec, ok := t.cache.Get(ip); ok {
			lookupsServed.Inc()
			return rec.(*Record), nil
		}
	}

	var chain []Record

	for {
		if bucket, ok := t.buckets[key]; ok && len(bucket) > 0 && uint64(bucket[0].StartIP) <= num {
			chain = bucket
			break
		}

		n, err := strconv.Atoi(key)

		if err != nil || n <= 0 {
			lookupsFailed.Inc()
			return nil, ErrNotFound
		}

		key = fmt.Sprintf("%04d", n-1)
	}

	for i := range chain {
		if uint64(chain[i].EndIP) < num {
			continue
		}

		rec := &chain[i]

		if t.cache != nil {
			t.cache.Add(ip, rec)
		}

		lookupsServed.Inc()

		return rec, nil
	}

	// The address falls in a hole of the range table.
	lookupsFailed.Inc()

	return nil, ErrNotFound
}

// Get is Lookup with a fallback: when no range covers the address, def
// is returned instead of ErrNotFound. A malformed address is still an
// error; the two failure kinds stay distinct on purpose.
func (t *Table) Get(ip string, def *Record) (*Record, error) {
	rec, err := t.Lookup(ip)

	if errors.Is(err, ErrNotFound) {
		return def, nil
	}

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ByCountryCode returns the side table entry for a two-letter country
// code. The code is matched case-insensitively.
func (t *Table) ByCountryCode(code string) (*CountryInfo, error) {
	info, ok := t.countries[codeCaser.String(code)]

	if !ok {
		return nil, ErrNotFound
	}

	return &info, nil
}
