// Command validate runs the Zillow loader and transform offline and checks
// the resulting annual table: integrity of every row, coverage of the 50
// states, and, when a boundary file is given, that every state with data can
// be drawn.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data assets/data/zillow-state-data.csv \
//	  -boundaries assets/data/us-states.json \
//	  -strict
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/couchcryptid/zillow-map-service/internal/adapter/boundary"
	"github.com/couchcryptid/zillow-map-service/internal/adapter/zillow"
	"github.com/couchcryptid/zillow-map-service/internal/chart"
	"github.com/couchcryptid/zillow-map-service/internal/domain"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
	"github.com/couchcryptid/zillow-map-service/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the Zillow state ZHVI CSV")
	boundaryPath := flag.String("boundaries", "", "optional path to the state boundary GeoJSON")
	strict := flag.Bool("strict", false, "treat incomplete state or boundary coverage as a failure")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *dataPath, *boundaryPath, *strict); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, dataPath, boundaryPath string, strict bool) int {
	fmt.Fprintln(out, "=== Zillow Dataset Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(zillow.NewCSVLoader(dataPath), pipeline.NewTransformer(logger), logger,
		observability.NewMetricsForTesting(), nil)

	table, err := p.Run(context.Background())
	if err != nil {
		fmt.Fprintf(out, "FATAL: %s: %v\n", dataPath, err)
		return 1
	}

	phases := []*phase{
		validateIntegrity(table),
		validateStateCoverage(table, strict),
	}
	if boundaryPath != "" {
		phases = append(phases, validateBoundaries(table, boundaryPath, strict))
	}

	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-30s %s\n", ph.name, status)
	}

	first, last, _ := table.YearRange()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d, states: %d, years: %d..%d\n", table.Len(), len(table.States()), first, last)

	for _, ph := range phases {
		if len(ph.notes) == 0 && ph.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", ph.name)
		for _, n := range ph.notes {
			fmt.Fprintf(out, "  Note: %s\n", n)
		}
		for i, e := range ph.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateIntegrity re-checks the row-level guarantees of the annual table.
func validateIntegrity(table *domain.AnnualTable) *phase {
	p := &phase{name: "Annual table integrity"}

	seen := make(map[string]struct{})
	for _, o := range table.Rows() {
		key := o.Region + "|" + strconv.Itoa(o.Year)
		if _, dup := seen[key]; dup {
			p.errorf("duplicate observation %s %d", o.Region, o.Year)
		}
		seen[key] = struct{}{}

		if math.IsNaN(o.YoY) {
			p.errorf("%s %d: undefined YoY", o.Region, o.Year)
		}
		if math.IsInf(o.YoY, 0) {
			p.notef("%s %d: previous value is zero, YoY is infinite", o.Region, o.Year)
		}
		if o.State != "" {
			if _, ok := domain.StateName(o.State); !ok {
				p.errorf("%s %d: %q is not a postal code", o.Region, o.Year, o.State)
			}
		}
	}

	for _, year := range table.Years() {
		mapped := 0
		for _, o := range table.ForYear(year) {
			if o.Mapped() {
				mapped++
			}
		}
		if mapped == 0 {
			p.notef("%d has no mapped states and will render an empty map", year)
		}
	}
	return p
}

// validateStateCoverage compares the regions in the data with the 50 states.
func validateStateCoverage(table *domain.AnnualTable, strict bool) *phase {
	p := &phase{name: "State coverage"}

	for _, region := range table.Unmapped() {
		p.notef("region %q has no postal code and is not drawn", region)
	}

	have := make(map[string]struct{})
	for _, code := range table.States() {
		have[code] = struct{}{}
	}
	for _, code := range domain.PostalCodes() {
		if _, ok := have[code]; ok {
			continue
		}
		name, _ := domain.StateName(code)
		if strict {
			p.errorf("no observations for %s (%s)", name, code)
		} else {
			p.notef("no observations for %s (%s)", name, code)
		}
	}
	return p
}

// validateBoundaries checks that every state with data has an outline.
func validateBoundaries(table *domain.AnnualTable, path string, strict bool) *phase {
	p := &phase{name: "Boundary coverage"}

	fc, err := boundary.Load(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	bm, err := chart.NewBasemap(fc, chart.NewAlbersUSA())
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for _, name := range bm.Skipped() {
		p.notef("feature %q is not a state and is ignored", name)
	}
	for _, code := range bm.Missing(table.States()) {
		if strict {
			p.errorf("state %s has data but no outline", code)
		} else {
			p.notef("state %s has data but no outline", code)
		}
	}
	return p
}
