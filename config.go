package iplocate

// DefaultDatabasePath is where the range CSV is expected when no explicit
// path is configured, relative to the working directory.
const DefaultDatabasePath = "data/IP-COUNTRY-REGION-CITY-LATITUDE-LONGITUDE-ZIPCODE-TIMEZONE-AREACODE.CSV"

// Config represents the lookup table's configuration.
type Config struct {
	// DatabasePath is the path to the IP range CSV database.
	DatabasePath string `mapstructure:"dbfile"`

	// CacheSize is the number of lookup results to keep in the LRU cache.
	// A size of zero disables the cache.
	CacheSize int `mapstructure:"cacheSize"`
}
