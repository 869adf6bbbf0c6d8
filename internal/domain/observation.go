package domain

import (
	"slices"
	"sort"
)

// Observation is one region's December ZHVI for a year together with its
// change from the previous retained year.
type Observation struct {
	Region string  `json:"region"` // name as it appears in the source file
	State  string  `json:"state"`  // postal code, empty when Region is not one of the 50 states
	Year   int     `json:"year"`
	ZHVI   float64 `json:"zhvi"`
	YoY    float64 `json:"yoy"` // percent
}

// Mapped reports whether the observation resolved to a postal code.
func (o Observation) Mapped() bool {
	return o.State != ""
}

// AnnualTable is the immutable result of the transform. It is built once at
// startup and shared by every request; accessors return copies so callers
// cannot alter it.
type AnnualTable struct {
	rows   []Observation
	byYear map[int][]Observation
	years  []int
}

// NewAnnualTable copies rows into a table ordered by year, then region.
func NewAnnualTable(rows []Observation) *AnnualTable {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Region < sorted[j].Region
	})

	t := &AnnualTable{
		rows:   sorted,
		byYear: make(map[int][]Observation),
	}
	for _, o := range sorted {
		if _, seen := t.byYear[o.Year]; !seen {
			t.years = append(t.years, o.Year)
		}
		t.byYear[o.Year] = append(t.byYear[o.Year], o)
	}
	return t
}

// Len returns the number of observations.
func (t *AnnualTable) Len() int {
	return len(t.rows)
}

// Rows returns every observation ordered by year, then region.
func (t *AnnualTable) Rows() []Observation {
	return slices.Clone(t.rows)
}

// Years returns the distinct years present, ascending.
func (t *AnnualTable) Years() []int {
	return slices.Clone(t.years)
}

// YearRange returns the first and last year. ok is false for an empty table.
func (t *AnnualTable) YearRange() (first, last int, ok bool) {
	if len(t.years) == 0 {
		return 0, 0, false
	}
	return t.years[0], t.years[len(t.years)-1], true
}

// ForYear returns the observations for one year, ordered by region. A year
// with no data yields an empty slice.
func (t *AnnualTable) ForYear(year int) []Observation {
	return slices.Clone(t.byYear[year])
}

// Unmapped returns the distinct region names that have no postal code.
func (t *AnnualTable) Unmapped() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, o := range t.rows {
		if o.Mapped() {
			continue
		}
		if _, ok := seen[o.Region]; ok {
			continue
		}
		seen[o.Region] = struct{}{}
		names = append(names, o.Region)
	}
	sort.Strings(names)
	return names
}

// States returns the distinct postal codes present, sorted.
func (t *AnnualTable) States() []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, o := range t.rows {
		if !o.Mapped() {
			continue
		}
		if _, ok := seen[o.State]; ok {
			continue
		}
		seen[o.State] = struct{}{}
		codes = append(codes, o.State)
	}
	sort.Strings(codes)
	return codes
}
