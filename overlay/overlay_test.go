package overlay

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// zipFixture follows the zip_code_database.csv layout: type in column 1,
// state in 5, county in 6, lat/long in 9 and 10.
const zipFixture = `zip,type,primary_city,acceptable_cities,unacceptable_cities,state,county,timezone,area_codes,latitude,longitude
94305,STANDARD,Stanford,,,CA,Santa Clara County,America/Los_Angeles,650,37.42,-122.17
10001,STANDARD,New York,,,NY,New York County,America/New_York,212,40.75,-73.99
60601,STANDARD,Chicago,,,IL,Cook County,America/Chicago,312,41.88,-87.62
73301,STANDARD,Austin,,,TX,Travis County,America/Chicago,512,30.26,-97.74
96860,MILITARY,Pearl Harbor,,,HI,Honolulu County,Pacific/Honolulu,808,,
`

const nodeFixture = `alice,knows,bob
bob,knows,carol
alice,likes,carol
`

var standardZips = []string{"94305", "10001", "60601", "73301"}

// writeTempFiles drops the fixtures into a temp dir and returns the
// node file path plus ready-to-use options.
func writeTempFiles(nodes string) (string, Options) {
	dir, err := os.MkdirTemp("", "overlay")

	Expect(err).To(BeNil())

	DeferCleanup(os.RemoveAll, dir)

	zipPath := filepath.Join(dir, "zips.csv")
	nodePath := filepath.Join(dir, "nodes.csv")

	Expect(os.WriteFile(zipPath, []byte(zipFixture), 0644)).To(Succeed())
	Expect(os.WriteFile(nodePath, []byte(nodes), 0644)).To(Succeed())

	return nodePath, Options{
		Columns:   []int{0, 2},
		ZipSource: zipPath,
	}
}

var _ = Describe("Overlay", func() {
	It("Should fail on a missing node file", func() {
		_, opts := writeTempFiles(nodeFixture)

		_, err := New("/nonexistent/nodes.csv", opts)

		Expect(err).To(HaveOccurred())
	})

	It("Should assign every node exactly one zip code", func() {
		nodePath, opts := writeTempFiles(nodeFixture)

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())

		m := o.Mapping()

		// alice, bob, carol: duplicates across rows and columns share
		// one assignment.
		Expect(m.Len()).To(Equal(3))
		Expect(m.Nodes()).To(ConsistOf("alice", "bob", "carol"))
	})

	It("Should hand out zip codes bijectively, never reusing one", func() {
		nodePath, opts := writeTempFiles(nodeFixture)

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())

		m := o.Mapping()

		seen := make(map[string]bool)

		for _, node := range m.Nodes() {
			zip, ok := m.Zip(node)

			Expect(ok).To(BeTrue())
			Expect(zip).To(BeElementOf(standardZips))
			Expect(seen[zip]).To(BeFalse())

			seen[zip] = true

			back, ok := m.Node(zip)

			Expect(ok).To(BeTrue())
			Expect(back).To(Equal(node))
		}
	})

	It("Should never assign a military zip code", func() {
		nodePath, opts := writeTempFiles(nodeFixture)

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())

		_, ok := o.Mapping().Node("96860")

		Expect(ok).To(BeFalse())
	})

	It("Should fail when the dataset needs more zip codes than exist", func() {
		nodePath, opts := writeTempFiles("a\nb\nc\nd\ne\n")

		opts.Columns = []int{0}

		_, err := New(nodePath, opts)

		Expect(err).To(MatchError(ContainSubstring("not enough zip codes")))
	})

	It("Should fail when a column is beyond the width of the input", func() {
		nodePath, opts := writeTempFiles(nodeFixture)

		opts.Columns = []int{5}

		_, err := New(nodePath, opts)

		Expect(err).To(MatchError(ContainSubstring("beyond the width")))
	})

	It("Should keep a header row out of the assignment", func() {
		nodePath, opts := writeTempFiles("from,relation,to\n" + nodeFixture)

		opts.HeaderRow = true

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())
		Expect(o.Mapping().Len()).To(Equal(3))

		_, ok := o.Mapping().Zip("from")

		Expect(ok).To(BeFalse())
	})

	It("Should honor a custom delimiter", func() {
		nodePath, opts := writeTempFiles(strings.ReplaceAll(nodeFixture, ",", "|"))

		opts.Delimiter = '|'

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())
		Expect(o.Mapping().Len()).To(Equal(3))
	})
})

var _ = Describe("Export", func() {
	It("Should replace node columns and leave the rest untouched", func() {
		nodePath, opts := writeTempFiles(nodeFixture)

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())

		outPath := filepath.Join(filepath.Dir(nodePath), "out.csv")

		Expect(o.Export(outPath)).To(Succeed())

		f, err := os.Open(outPath)

		Expect(err).To(BeNil())

		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()

		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(3))

		m := o.Mapping()

		aliceZip, _ := m.Zip("alice")
		bobZip, _ := m.Zip("bob")
		carolZip, _ := m.Zip("carol")

		Expect(rows[0]).To(Equal([]string{aliceZip, "knows", bobZip}))
		Expect(rows[1]).To(Equal([]string{bobZip, "knows", carolZip}))
		Expect(rows[2]).To(Equal([]string{aliceZip, "likes", carolZip}))
	})

	It("Should copy a header row through unchanged", func() {
		nodePath, opts := writeTempFiles("from,relation,to\n" + nodeFixture)

		opts.HeaderRow = true

		o, err := New(nodePath, opts)

		Expect(err).To(BeNil())

		outPath := filepath.Join(filepath.Dir(nodePath), "out.csv")

		Expect(o.Export(outPath)).To(Succeed())

		f, err := os.Open(outPath)

		Expect(err).To(BeNil())

		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()

		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal([]string{"from", "relation", "to"}))
	})
})
