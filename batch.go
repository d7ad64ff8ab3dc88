package iplocate

import (
	"github.com/sourcegraph/conc/pool"
)

// Result is one entry of a batch resolution.
type Result struct {
	IP     string
	Record *Record
	Err    error
}

// Results resolves ips against loc with up to workers concurrent
// lookups. The table is read-only once loaded, so any number of workers
// may share it. Output order matches input order.
func Results(loc Locator, ips []string, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(ips))

	p := pool.New().WithMaxGoroutines(workers)

	for i, ip := range ips {
		i, ip := i, ip

		p.Go(func() {
			rec, err := loc.Lookup(ip)

			results[i] = Result{IP: ip, Record: rec, Err: err}
		})
	}

	p.Wait()

	return results
}
