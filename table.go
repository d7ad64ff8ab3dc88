package iplocate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lookupsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iplocate_lookups_served",
		Help: "The total number of successful lookups",
	})

	lookupsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iplocate_lookups_failed",
		Help: "The total number of lookups without a covering range",
	})
)

// rangeColumns is the field count of a well-formed database row.
const rangeColumns = 12

var codeCaser = cases.Upper(language.Und)

// Table is an in-memory IP range table. Buckets are keyed by the first
// four digits of the zero-padded decimal start address, each holding its
// records in source order, rising by start address. The source file is
// pre-sorted; the loader relies on that and never re-sorts.
//
// Once Load returns, the table is read-only and safe for any number of
// concurrent readers.
type Table struct {
	config    *Config
	buckets   map[string][]Record
	countries map[string]CountryInfo
	cache     *lru.Cache
}

// New creates a Table for config. Call Load before any lookups.
func New(config *Config) *Table {
	return &Table{
		config:    config,
		buckets:   make(map[string][]Record),
		countries: make(map[string]CountryInfo),
	}
}

// Load reads the range CSV into the bucket index and the country side
// table. A missing or unreadable file is fatal; malformed rows are
// logged and skipped so one bad row never loses the rest of the feed.
func (t *Table) Load() error {
	path := t.config.DatabasePath

	if path == "" {
		path = DefaultDatabasePath
	}

	f, err := os.Open(path)

	if err != nil {
		return errors.Wrap(err, "unable to open range database")
	}

	defer f.Close()

	if t.config.CacheSize > 0 {
		t.cache, err = lru.New(t.config.CacheSize)

		if err != nil {
			return errors.Wrap(err, "unable to create lookup cache")
		}
	}

	r := csv.NewReader(f)

	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var line int

	for {
		row, err := r.Read()

		if err != nil {
			if err == io.EOF {
				break
			}

			return errors.Wrap(err, "unable to read range database")
		}

		line++

		if len(row) == 0 || strings.Trim(row[0], `"`) == "0" {
			// Placeholder rows in the source feed.
			continue
		}

		if len(row) != rangeColumns {
			log.WithFields(log.Fields{
				"line":   line,
				"fields": len(row),
			}).Warning("Irregular row in range database")
			continue
		}

		rec, err := parseRecord(row)

		if err != nil {
			log.WithFields(log.Fields{
				"line":  line,
				"error": err,
			}).Warning("Unparseable row in range database")
			continue
		}

		key := bucketKey(uint64(rec.StartIP))

		t.buckets[key] = append(t.buckets[key], *rec)

		t.countries[codeCaser.String(rec.CountryCode)] = CountryInfo{
			Code:   rec.CountryCode,
			Name:   rec.CountryName,
			Region: rec.Region,
			City:   rec.City,
		}
	}

	log.WithFields(log.Fields{
		"file":      path,
		"buckets":   len(t.buckets),
		"countries": len(t.countries),
	}).Info("Loaded range database")

	return nil
}

// parseRecord converts a raw CSV row into a Record. Fields in the feed
// are individually quote-wrapped, so surrounding quotes are stripped
// before conversion.
func parseRecord(row []string) (*Record, error) {
	for i, field := range row {
		row[i] = strings.Trim(field, `"`)
	}

	start, err := strconv.ParseUint(row[0], 10, 32)

	if err != nil {
		return nil, errors.Wrap(err, "bad start address")
	}

	end, err := strconv.ParseUint(row[1], 10, 32)

	if err != nil {
		return nil, errors.Wrap(err, "bad end address")
	}

	lat, err := strconv.ParseFloat(row[6], 64)

	if err != nil {
		return nil, errors.Wrap(err, "bad latitude")
	}

	lon, err := strconv.ParseFloat(row[7], 64)

	if err != nil {
		return nil, errors.Wrap(err, "bad longitude")
	}

	return &Record{
		StartIP:      uint32(start),
		EndIP:        uint32(end),
		CountryCode:  row[2],
		CountryName:  row[3],
		Region:       row[4],
		City:         row[5],
		Latitude:     lat,
		Longitude:    lon,
		Zip:          row[8],
		Timezone:     row[9],
		CountryPhone: row[10],
		AreaPhone:    row[11],
	}, nil
}

// bucketKey is the first four digits of the address's zero-padded
// ten-digit decimal form.
func bucketKey(ip uint64) string {
	return fmt.Sprintf("%010d", ip)[:4]
}
