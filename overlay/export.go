package overlay

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Export writes a copy of the node file to outfile with every configured
// column replaced by its assigned zip code. A header row is copied
// through unchanged.
func (o *Overlay) Export(outfile string) error {
	in, err := os.Open(o.nodeFile)

	if err != nil {
		return errors.Wrap(err, "unable to open node file")
	}

	defer in.Close()

	out, err := os.Create(outfile)

	if err != nil {
		return errors.Wrap(err, "unable to create output file")
	}

	defer out.Close()

	r := csv.NewReader(in)

	r.Comma = o.opts.Delimiter
	r.FieldsPerRecord = -1

	w := csv.NewWriter(out)

	w.Comma = o.opts.Delimiter

	header := o.opts.HeaderRow

	for {
		row, err := r.Read()

		if err != nil {
			if err == io.EOF {
				break
			}

			return errors.Wrap(err, "unable to read node file")
		}

		if !header {
			for _, col := range o.opts.Columns {
				row[col] = o.nodeToZip[row[col]]
			}
		}

		header = false

		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "unable to write output file")
		}
	}

	w.Flush()

	return errors.Wrap(w.Error(), "unable to flush output file")
}
