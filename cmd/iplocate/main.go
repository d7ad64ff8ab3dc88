package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/datakit/iplocate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	configFlag  = flag.String("config", "", "configuration file path")
	dbFlag      = flag.String("dbfile", "", "path of the IP range CSV database")
	checkFlag   = flag.Bool("check", false, "run the built-in self check and exit")
	batchFlag   = flag.String("batch", "", "file with one IP address per line to resolve concurrently")
	workersFlag = flag.Int("workers", 8, "number of concurrent lookups in batch mode")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *flagDebug {
		log.SetLevel(log.DebugLevel)
	}

	viper.SetDefault("dbfile", iplocate.DefaultDatabasePath)
	viper.SetDefault("cacheSize", 1024)

	viper.SetConfigName("iplocate")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/iplocate/")
	viper.AddConfigPath("$HOME/.iplocate")
	viper.AddConfigPath(".")

	if *configFlag != "" {
		viper.SetConfigFile(*configFlag)
	}

	// The config file is optional, the defaults cover the common case.
	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).Debug("No configuration file loaded")
	}

	config := &iplocate.Config{}

	if err := viper.Unmarshal(config); err != nil {
		log.WithError(err).Fatalln("Unable to unmarshal configuration")
	}

	if *dbFlag != "" {
		config.DatabasePath = *dbFlag
	}

	table := iplocate.New(config)

	if err := table.Load(); err != nil {
		log.WithError(err).Fatalln("Unable to load range database")
	}

	if *checkFlag {
		if err := iplocate.SelfCheck(table); err != nil {
			log.WithError(err).Fatalln("Self check failed")
		}

		log.Info("Self check passed")
		return
	}

	if *batchFlag != "" {
		runBatch(table, *batchFlag, *workersFlag)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: iplocate [flags] ipaddr")
		flag.PrintDefaults()
		os.Exit(2)
	}

	rec, err := table.Lookup(flag.Arg(0))

	if err != nil {
		log.WithFields(log.Fields{
			"ip":    flag.Arg(0),
			"error": err,
		}).Fatalln("Lookup failed")
	}

	fmt.Println(rec.String())
}

// runBatch resolves a file of addresses, one per line, and prints one
// result line per resolvable address.
func runBatch(table *iplocate.Table, file string, workers int) {
	data, err := os.ReadFile(file)

	if err != nil {
		log.WithError(err).Fatalln("Unable to read batch file")
	}

	var ips []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		if line != "" {
			ips = append(ips, line)
		}
	}

	for _, res := range iplocate.Results(table, ips, workers) {
		if res.Err != nil {
			log.WithFields(log.Fields{
				"ip":    res.IP,
				"error": res.Err,
			}).Warning("Unresolved address")
			continue
		}

		fmt.Printf("%s; %s\n", res.IP, res.Record.String())
	}
}
