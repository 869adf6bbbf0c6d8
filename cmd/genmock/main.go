// Command genmock writes a deterministic, Zillow-shaped state ZHVI CSV for
// local runs and tests. Every one of the 50 states plus the District of
// Columbia gets one column per month, with month-end date headers.
//
// Usage:
//
//	go run ./cmd/genmock -out assets/data/zillow-state-data.csv -from 2000 -to 2024
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
)

// extraRegions appear in real exports but are not among the 50 states.
var extraRegions = []struct{ name, abbr string }{
	{"District of Columbia", "DC"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated CSV")
	from := flag.Int("from", 2000, "first year (January) to generate")
	to := flag.Int("to", 2024, "last year (December) to generate")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *to < *from {
		return fmt.Errorf("-to %d is before -from %d", *to, *from)
	}

	df := generate(*from, *to)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d regions x %d months to %s", df.Nrow(), df.Ncol()-len(domain.IdentifyingColumns)-1, *out)
	return nil
}

type region struct {
	name, abbr string
}

func regions() []region {
	var rs []region
	for _, code := range domain.PostalCodes() {
		name, _ := domain.StateName(code)
		rs = append(rs, region{name: name, abbr: code})
	}
	for _, r := range extraRegions {
		rs = append(rs, region{name: r.name, abbr: r.abbr})
	}
	return rs
}

// generate builds the wide frame. Values follow a per-region base price and a
// smooth annual growth cycle; the first months of every seventh region are
// blank, as in early Zillow history.
func generate(from, to int) dataframe.DataFrame {
	rs := regions()
	n := len(rs)

	ids := make([]string, n)
	ranks := make([]string, n)
	names := make([]string, n)
	types := make([]string, n)
	abbrs := make([]string, n)
	for i, r := range rs {
		ids[i] = strconv.Itoa(1000 + i)
		ranks[i] = strconv.Itoa(i)
		names[i] = r.name
		types[i] = "state"
		abbrs[i] = r.abbr
	}

	cols := []series.Series{
		series.New(ids, series.String, "RegionID"),
		series.New(ranks, series.String, "SizeRank"),
		series.New(names, series.String, domain.ColRegionName),
		series.New(types, series.String, "RegionType"),
		series.New(abbrs, series.String, "StateName"),
	}

	month := 0
	for year := from; year <= to; year++ {
		for m := time.January; m <= time.December; m++ {
			values := make([]string, n)
			for i := range rs {
				if i%7 == 3 && year == from && m <= time.March {
					continue
				}
				values[i] = strconv.FormatFloat(value(i, month), 'f', 1, 64)
			}
			header := monthEnd(year, m).Format(time.DateOnly)
			cols = append(cols, series.New(values, series.String, header))
			month++
		}
	}
	return dataframe.New(cols...)
}

// value is the index for region i after the given number of months.
func value(i, month int) float64 {
	base := 120000 + float64((i*7919)%250000)
	level := 1.0
	for k := 0; k < month; k++ {
		annual := 0.03 + 0.08*math.Sin(float64(k)/24+float64(i))
		level *= 1 + annual/12
	}
	return base * level
}

func monthEnd(year int, m time.Month) time.Time {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC)
}
