package overlay

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jmcvetta/randutil"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// DefaultZipSource is where the US zip code inventory is expected when
// no explicit path is configured, relative to the working directory.
const DefaultZipSource = "data/zip_code_database.csv"

// Columns of the zip code inventory CSV.
const (
	zipIndex     = 0
	zipTypeIndex = 1
	stateIndex   = 5
	countyIndex  = 6
	latIndex     = 9
	longIndex    = 10
)

// Options configures an Overlay.
type Options struct {
	// Columns are the zero-based node columns of the input file.
	// Defaults to column 0.
	Columns []int

	// Delimiter is the input file's column separator. Defaults to ','.
	Delimiter rune

	// HeaderRow marks the first line as column headers, which stay out
	// of the assignment and are copied through on export.
	HeaderRow bool

	// ZipSource is the path of the zip code inventory CSV.
	ZipSource string
}

// ZipInfo describes one zip code of the inventory.
type ZipInfo struct {
	State     string
	County    string
	Latitude  string
	Longitude string
}

// Overlay assigns a pseudonymous US zip code to every node found in the
// configured columns of a CSV file. Each node receives exactly one zip
// code and no zip code is handed out twice, so the released file can be
// mapped back by whoever holds the overlay.
type Overlay struct {
	nodeFile string
	opts     Options

	zips       map[string]ZipInfo
	stateZips  map[string][]string
	countyZips map[string][]string

	nodeToZip map[string]string
	zipToNode map[string]string
}

// New builds the overlay for nodeFile: the zip inventory is read into
// memory, then every node is assigned a random unused zip code.
func New(nodeFile string, opts Options) (*Overlay, error) {
	if len(opts.Columns) == 0 {
		opts.Columns = []int{0}
	}

	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	if opts.ZipSource == "" {
		opts.ZipSource = DefaultZipSource
	}

	// Catch an unreadable input right away, before the inventory load.
	f, err := os.Open(nodeFile)

	if err != nil {
		return nil, errors.Wrap(err, "unable to open node file")
	}

	f.Close()

	o := &Overlay{
		nodeFile:   nodeFile,
		opts:       opts,
		zips:       make(map[string]ZipInfo),
		stateZips:  make(map[string][]string),
		countyZips: make(map[string][]string),
		nodeToZip:  make(map[string]string),
		zipToNode:  make(map[string]string),
	}

	if err := o.loadZips(); err != nil {
		return nil, err
	}

	if err := o.assign(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"file":  nodeFile,
		"nodes": len(o.nodeToZip),
	}).Info("Assigned zip overlay")

	return o, nil
}

// loadZips reads the zip code inventory, grouped by state and county.
func (o *Overlay) loadZips() error {
	f, err := os.Open(o.opts.ZipSource)

	if err != nil {
		return errors.Wrap(err, "unable to open zip inventory")
	}

	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	// The inventory always carries a header line.
	if _, err := r.Read(); err != nil {
		return errors.Wrap(err, "unable to read zip inventory")
	}

	for {
		row, err := r.Read()

		if err != nil {
			if err == io.EOF {
				break
			}

			return errors.Wrap(err, "unable to read zip inventory")
		}

		if len(row) <= longIndex {
			continue
		}

		// Military zip codes carry no lat/long.
		if row[zipTypeIndex] == "MILITARY" {
			continue
		}

		zip := row[zipIndex]
		state := row[stateIndex]
		county := row[countyIndex]

		o.zips[zip] = ZipInfo{
			State:     state,
			County:    county,
			Latitude:  row[latIndex],
			Longitude: row[longIndex],
		}

		o.countyZips[county] = append(o.countyZips[county], zip)
		o.stateZips[state] = append(o.stateZips[state], zip)
	}

	return nil
}

// assign walks the node columns of every input row in order. A node seen
// before keeps its earlier zip code; a fresh node draws a new one.
func (o *Overlay) assign() error {
	f, err := os.Open(o.nodeFile)

	if err != nil {
		return errors.Wrap(err, "unable to open node file")
	}

	defer f.Close()

	r := csv.NewReader(f)

	r.Comma = o.opts.Delimiter
	r.FieldsPerRecord = -1

	header := o.opts.HeaderRow

	for {
		row, err := r.Read()

		if err != nil {
			if err == io.EOF {
				break
			}

			return errors.Wrap(err, "unable to read node file")
		}

		if header {
			header = false
			continue
		}

		for _, col := range o.opts.Columns {
			if col >= len(row) {
				return errors.Errorf("column %d is beyond the width of %s", col, o.nodeFile)
			}

			node := row[col]

			if _, ok := o.nodeToZip[node]; ok {
				// Assigned on an earlier occurrence.
				continue
			}

			zip, err := o.nextZip()

			if err != nil {
				return err
			}

			o.nodeToZip[node] = zip
			o.zipToNode[zip] = node
		}
	}

	return nil
}

// nextZip draws a random zip code from a randomly chosen state and
// retires it, so no two calls ever return the same code.
func (o *Overlay) nextZip() (string, error) {
	if len(o.stateZips) == 0 {
		return "", errors.New("not enough zip codes in the US to cover this dataset")
	}

	state, err := randutil.ChoiceString(lo.Keys(o.stateZips))

	if err != nil {
		return "", errors.Wrap(err, "unable to choose a state")
	}

	zip, err := randutil.ChoiceString(o.stateZips[state])

	if err != nil {
		return "", errors.Wrap(err, "unable to choose a zip code")
	}

	o.stateZips[state] = remove(o.stateZips[state], zip)

	if len(o.stateZips[state]) == 0 {
		delete(o.stateZips, state)
	}

	return zip, nil
}

func remove[V comparable](collection []V, value V) []V {
	return lo.Filter(collection, func(item V, _ int) bool {
		return item != value
	})
}
