// Package chart builds the choropleth for one year: the RdYlGn colour scale,
// the projected state outlines, and the pure figure that joins them with the
// annual table.
package chart

import (
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
)

// dollars groups thousands the way tooltips show them.
var dollars = message.NewPrinter(language.English)

// Region is one shaded state.
type Region struct {
	Code string
	Name string
	ZHVI float64
	YoY  float64
	Fill string // #rrggbb
}

// Label is the hover text for the region.
func (r Region) Label(year int) string {
	return r.Name + " (" + r.Code + ") " + strconv.Itoa(year) +
		": " + FormatPercent(r.YoY) + ", ZHVI " + FormatValue(r.ZHVI)
}

// Figure is the choropleth for one year. Regions holds the mapped states with
// an observation that year, ordered by code.
type Figure struct {
	Year    int
	Regions []Region
}

// Empty reports whether no state has data for the year.
func (f Figure) Empty() bool {
	return len(f.Regions) == 0
}

// Region returns the entry for a postal code.
func (f Figure) Region(code string) (Region, bool) {
	i := sort.Search(len(f.Regions), func(i int) bool { return f.Regions[i].Code >= code })
	if i < len(f.Regions) && f.Regions[i].Code == code {
		return f.Regions[i], true
	}
	return Region{}, false
}

// BuildFigure selects the year's rows and shades each mapped state. Rows
// without a postal code are left out; a year with no rows yields an empty
// figure.
func BuildFigure(year int, table *domain.AnnualTable, scale *Scale) Figure {
	fig := Figure{Year: year}
	for _, o := range table.ForYear(year) {
		if !o.Mapped() {
			continue
		}
		name, ok := domain.StateName(o.State)
		if !ok {
			name = o.Region
		}
		fig.Regions = append(fig.Regions, Region{
			Code: o.State,
			Name: name,
			ZHVI: o.ZHVI,
			YoY:  o.YoY,
			Fill: Hex(scale.Color(o.YoY)),
		})
	}
	sort.Slice(fig.Regions, func(i, j int) bool { return fig.Regions[i].Code < fig.Regions[j].Code })
	return fig
}

// FormatPercent renders a percentage with one decimal and an explicit sign,
// e.g. "+10.0%".
func FormatPercent(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+∞%"
	case math.IsInf(v, -1):
		return "-∞%"
	case math.IsNaN(v):
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Round(1)
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatValue renders an index value in whole dollars, e.g. "$345,678".
func FormatValue(v float64) string {
	n := decimal.NewFromFloat(v).Round(0).IntPart()
	if n < 0 {
		return "-$" + dollars.Sprintf("%d", -n)
	}
	return "$" + dollars.Sprintf("%d", n)
}
