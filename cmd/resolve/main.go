// Command resolve builds a gazetteer index from a CSV snapshot of
// reference data and resolves query phrases against it.
//
// Usage:
//
//	resolve -data locations.csv [-config config.yaml] [-country GB] [-limit 5] <phrase>...
//
// The CSV columns are: name, code, kind, parent code, aliases
// (semicolon separated), coordinates (UN-LOCODE degrees-minutes,
// optional). A header row is skipped when present.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/locusworks/gazetteer"
)

func main() {
	dataPath := flag.String("data", "locations.csv", "CSV reference data file")
	configPath := flag.String("config", "", "optional YAML config file")
	country := flag.String("country", "", "restrict results to an alpha-2 country code")
	limit := flag.Int("limit", 5, "maximum results per phrase")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: resolve -data locations.csv <phrase>...")
		os.Exit(2)
	}

	records, err := loadRecords(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []gazetteer.Option
	if *configPath != "" {
		cfg, err := gazetteer.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, gazetteer.WithConfig(cfg))
	}

	ix, err := gazetteer.Build(records, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d locations from %s\n", ix.Len(), *dataPath)

	var searchOpts []gazetteer.SearchOption
	searchOpts = append(searchOpts, gazetteer.WithLimit(*limit))
	if *country != "" {
		searchOpts = append(searchOpts, gazetteer.WithCountryScope(*country))
	}

	for _, phrase := range flag.Args() {
		results, err := ix.Search(phrase, searchOpts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%q:\n", phrase)
		if len(results) == 0 {
			fmt.Println("  no matches")
			continue
		}
		for _, r := range results {
			fmt.Printf("  %-12s %-12s %-24s %.3f (%s)\n", r.Code, r.Kind, r.Name, r.Score, r.Match)
		}
	}
}

// loadRecords reads the CSV snapshot into raw records for Build.
func loadRecords(path string) ([]gazetteer.RawRecord, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer fi.Close()

	reader := csv.NewReader(fi)
	reader.FieldsPerRecord = -1

	var records []gazetteer.RawRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s line %d: %w", path, line, err)
		}
		if line == 1 && strings.EqualFold(row[0], "name") {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("reading %s line %d: want at least name, code, kind", path, line)
		}
		rec := gazetteer.RawRecord{
			Name: row[0],
			Code: row[1],
			Kind: row[2],
		}
		if len(row) > 3 {
			rec.ParentCode = row[3]
		}
		if len(row) > 4 && row[4] != "" {
			rec.Aliases = strings.Split(row[4], ";")
		}
		if len(row) > 5 {
			rec.Coordinates = row[5]
		}
		records = append(records, rec)
	}
	return records, nil
}
