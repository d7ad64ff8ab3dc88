package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/datakit/iplocate/overlay"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	columnsFlag   = flag.String("columns", "0", "comma separated, zero based column numbers holding nodes")
	delimiterFlag = flag.String("delimiter", ",", "column delimiter of the node file")
	firstLineFlag = flag.Bool("first-line", false, "treat the first line of the node file as column headers")
	outFlag       = flag.String("outfile", "", "write a copy of the input with nodes replaced by zip codes")
	zipdbFlag     = flag.String("zipdb", "", "path of the zip code inventory CSV")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *flagDebug {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: zipoverlay [flags] node_file")
		flag.PrintDefaults()
		os.Exit(2)
	}

	viper.SetDefault("zipdb", overlay.DefaultZipSource)

	viper.SetConfigName("zipoverlay")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).Debug("No configuration file loaded")
	}

	zipSource := viper.GetString("zipdb")

	if *zipdbFlag != "" {
		zipSource = *zipdbFlag
	}

	columns, err := parseColumns(*columnsFlag)

	if err != nil {
		log.WithError(err).Fatalln("Invalid column list")
	}

	if len(*delimiterFlag) != 1 {
		log.Fatalln("Delimiter must be a single character")
	}

	o, err := overlay.New(flag.Arg(0), overlay.Options{
		Columns:   columns,
		Delimiter: rune((*delimiterFlag)[0]),
		HeaderRow: *firstLineFlag,
		ZipSource: zipSource,
	})

	if err != nil {
		log.WithError(err).Fatalln("Unable to build overlay")
	}

	log.WithField("nodes", o.Mapping().Len()).Info("Overlay complete")

	if *outFlag != "" {
		if err := o.Export(*outFlag); err != nil {
			log.WithError(err).Fatalln("Unable to export converted input")
		}

		log.WithField("file", *outFlag).Info("Wrote converted input")
	}
}

func parseColumns(s string) ([]int, error) {
	var columns []int

	for _, part := range strings.Split(s, ",") {
		col, err := strconv.Atoi(strings.TrimSpace(part))

		if err != nil {
			return nil, err
		}

		columns = append(columns, col)
	}

	return columns, nil
}
