package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names used across the transform.
const (
	ColRegionName = "RegionName"
	ColState      = "State"
	ColDate       = "Date"
	ColMonth      = "Month"
	ColYear       = "Year"
	ColZHVI       = "ZHVI"
)

// IdentifyingColumns are present in every Zillow region export and dropped
// before reshaping.
var IdentifyingColumns = []string{"RegionID", "SizeRank", "RegionType", "StateName"}

var (
	ErrMissingColumn        = errors.New("missing column")
	ErrNoData               = errors.New("no data")
	ErrInvalidDate          = errors.New("invalid date header")
	ErrInvalidValue         = errors.New("invalid index value")
	ErrDuplicateObservation = errors.New("duplicate state/year observation")
)

// dateLayouts are the header formats seen in Zillow exports, most common first.
var dateLayouts = []string{time.DateOnly, "2006-01", "1/2/2006"}

// Transform runs every step from the raw wide frame to the annual table.
// Any error means the input is malformed and the table must not be used.
func Transform(raw dataframe.DataFrame) (*AnnualTable, error) {
	pruned, err := Prune(raw)
	if err != nil {
		return nil, err
	}
	panel, err := Unpivot(pruned)
	if err != nil {
		return nil, err
	}
	panel, err = ParseDates(panel)
	if err != nil {
		return nil, err
	}
	panel, err = SortPanel(panel)
	if err != nil {
		return nil, err
	}
	december, err := FilterDecember(panel)
	if err != nil {
		return nil, err
	}
	annual, err := DeriveYear(december)
	if err != nil {
		return nil, err
	}
	annual, err = RenameRegion(annual)
	if err != nil {
		return nil, err
	}
	if err := CheckUnique(annual); err != nil {
		return nil, err
	}
	obs, err := PercentChange(annual)
	if err != nil {
		return nil, err
	}
	return NewAnnualTable(MapPostalCodes(DropUndefined(obs))), nil
}

// Prune keeps RegionName and the monthly value columns.
func Prune(raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	if raw.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("prune: %w", raw.Err)
	}
	if raw.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("prune: %w: no region rows", ErrNoData)
	}
	names := raw.Names()
	for _, col := range append([]string{ColRegionName}, IdentifyingColumns...) {
		if !slices.Contains(names, col) {
			return dataframe.DataFrame{}, fmt.Errorf("prune: %w %q", ErrMissingColumn, col)
		}
	}
	pruned := raw.Drop(IdentifyingColumns)
	if pruned.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("prune: %w", pruned.Err)
	}
	return pruned, nil
}

// Unpivot reshapes the wide frame into (RegionName, Date, ZHVI) rows, one per
// region and month column. Blank cells become NaN; any other non-numeric cell
// is an error. Date is still the raw header text.
func Unpivot(wide dataframe.DataFrame) (dataframe.DataFrame, error) {
	regions := wide.Col(ColRegionName).Records()

	var dateCols []string
	for _, name := range wide.Names() {
		if name != ColRegionName {
			dateCols = append(dateCols, name)
		}
	}
	if len(dateCols) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("unpivot: %w: no date columns", ErrMissingColumn)
	}

	n := len(regions) * len(dateCols)
	outRegions := make([]string, 0, n)
	outDates := make([]string, 0, n)
	outValues := make([]float64, 0, n)

	for _, col := range dateCols {
		for i, cell := range wide.Col(col).Records() {
			v, err := parseIndexValue(cell)
			if err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("unpivot %s, column %s: %w", regions[i], col, err)
			}
			outRegions = append(outRegions, regions[i])
			outDates = append(outDates, col)
			outValues = append(outValues, v)
		}
	}

	panel := dataframe.New(
		series.New(outRegions, series.String, ColRegionName),
		series.New(outDates, series.String, ColDate),
		series.New(outValues, series.Float, ColZHVI),
	)
	if panel.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("unpivot: %w", panel.Err)
	}
	return panel, nil
}

// ParseDates normalises the Date column to YYYY-MM-DD and adds a Month column.
func ParseDates(panel dataframe.DataFrame) (dataframe.DataFrame, error) {
	raw := panel.Col(ColDate).Records()
	dates := make([]string, len(raw))
	months := make([]int, len(raw))

	parsed := make(map[string]time.Time)
	for i, s := range raw {
		t, ok := parsed[s]
		if !ok {
			var err error
			if t, err = ParseDate(s); err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("parse dates: %w", err)
			}
			parsed[s] = t
		}
		dates[i] = t.Format(time.DateOnly)
		months[i] = int(t.Month())
	}

	out := panel.
		Mutate(series.New(dates, series.String, ColDate)).
		Mutate(series.New(months, series.Int, ColMonth))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse dates: %w", out.Err)
	}
	return out, nil
}

// ParseDate parses a month column header.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// SortPanel orders rows by region, then date. The per-region difference in
// PercentChange depends on this order.
func SortPanel(panel dataframe.DataFrame) (dataframe.DataFrame, error) {
	out := panel.Arrange(dataframe.Sort(ColRegionName), dataframe.Sort(ColDate))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("sort panel: %w", out.Err)
	}
	return out, nil
}

// FilterDecember keeps only December rows. Applying it to its own output
// returns the same rows.
func FilterDecember(panel dataframe.DataFrame) (dataframe.DataFrame, error) {
	months := panel.Col(ColMonth)
	if months.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter december: %w %q", ErrMissingColumn, ColMonth)
	}
	if !slices.Contains(months.Float(), float64(time.December)) {
		return dataframe.DataFrame{}, fmt.Errorf("filter december: %w: no December observations", ErrNoData)
	}

	out := panel.Filter(dataframe.F{
		Colname:    ColMonth,
		Comparator: series.Eq,
		Comparando: int(time.December),
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter december: %w", out.Err)
	}
	return out, nil
}

// DeriveYear replaces Date and Month with an integer Year column and orders
// the columns as RegionName, Year, ZHVI.
func DeriveYear(december dataframe.DataFrame) (dataframe.DataFrame, error) {
	dates := december.Col(ColDate).Records()
	years := make([]int, len(dates))
	for i, s := range dates {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("derive year: %w: %q", ErrInvalidDate, s)
		}
		years[i] = t.Year()
	}

	out := december.
		Mutate(series.New(years, series.Int, ColYear)).
		Select([]string{ColRegionName, ColYear, ColZHVI})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("derive year: %w", out.Err)
	}
	return out, nil
}

// RenameRegion renames RegionName to State.
func RenameRegion(annual dataframe.DataFrame) (dataframe.DataFrame, error) {
	out := annual.Rename(ColState, ColRegionName)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("rename region: %w", out.Err)
	}
	return out, nil
}

// CheckUnique fails when a (State, Year) pair occurs more than once, which
// only happens when the source repeats a region or a month column.
func CheckUnique(annual dataframe.DataFrame) error {
	states := annual.Col(ColState).Records()
	years := annual.Col(ColYear).Records()

	seen := make(map[string]struct{}, len(states))
	for i := range states {
		key := states[i] + "|" + years[i]
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s %s", ErrDuplicateObservation, states[i], years[i])
		}
		seen[key] = struct{}{}
	}
	return nil
}

// PercentChange computes YoY for every row against the previous row of the
// same state, ordered by year. YoY is NaN for a state's first year and when
// either value is missing. A zero previous value gives +Inf or -Inf, or NaN
// when both values are zero; infinite rows are kept and saturate the scale.
func PercentChange(annual dataframe.DataFrame) ([]Observation, error) {
	sorted := annual.Arrange(dataframe.Sort(ColState), dataframe.Sort(ColYear))
	if sorted.Err != nil {
		return nil, fmt.Errorf("percent change: %w", sorted.Err)
	}

	states := sorted.Col(ColState).Records()
	years := sorted.Col(ColYear).Float()
	values := sorted.Col(ColZHVI).Float()

	out := make([]Observation, len(states))
	for i := range states {
		out[i] = Observation{
			Region: states[i],
			Year:   int(years[i]),
			ZHVI:   values[i],
			YoY:    math.NaN(),
		}
		if i == 0 || states[i] != states[i-1] {
			continue
		}
		prev, cur := values[i-1], values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		out[i].YoY = (cur - prev) / prev * 100
	}
	return out, nil
}

// DropUndefined removes rows whose YoY is NaN.
func DropUndefined(obs []Observation) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if !math.IsNaN(o.YoY) {
			out = append(out, o)
		}
	}
	return out
}

// MapPostalCodes sets State to the region's postal code, or empty when the
// region is not one of the 50 states.
func MapPostalCodes(obs []Observation) []Observation {
	out := make([]Observation, len(obs))
	for i, o := range obs {
		o.State, _ = PostalCode(o.Region)
		out[i] = o
	}
	return out
}

func parseIndexValue(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NaN", "NA", "nan":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, cell)
	}
	return v, nil
}
