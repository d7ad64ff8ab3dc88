package iplocate

import (
	"github.com/pkg/errors"
)

// checkAddress and checkFields pin a known row of the reference dataset.
// The field values are verbatim from the source feed.
var (
	checkAddress = "171.64.75.96"

	checkFields = []string{
		"US", "United States", "California", "Stanford",
		"37.421262", "-122.163949", "94305", "-07:00", "1", "650",
	}
)

// SelfCheck resolves a known address and compares the result against
// its expected literal fields. It catches a stale or truncated database
// before the table is put to use.
func SelfCheck(t *Table) error {
	rec, err := t.Lookup(checkAddress)

	if err != nil {
		return errors.Wrapf(err, "self check lookup of %s failed", checkAddress)
	}

	got := rec.Fields()

	for i, want := range checkFields {
		if got[i] != want {
			return errors.Errorf("self check mismatch on %s: field %d is %q, want %q", checkAddress, i, got[i], want)
		}
	}

	return nil
}
