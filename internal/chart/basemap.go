package chart

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
)

// ErrNoStates is returned when no feature in the collection is a US state
// with at least one drawable ring.
var ErrNoStates = errors.New("boundary file has no state features")

const viewBoxPadding = 10

// Shape is one state's outline as SVG path data.
type Shape struct {
	Code string
	Name string
	Path string
}

// Basemap holds state outlines projected once at startup. It is read-only and
// shared by all requests.
type Basemap struct {
	shapes  []Shape
	bounds  *geom.Bounds
	skipped []string
}

// NewBasemap projects every state feature in fc. Features are matched by a
// two-letter id, or by their "name" property via the postal code table; other
// features (territories, the District) are skipped.
func NewBasemap(fc *geojson.FeatureCollection, proj *AlbersUSA) (*Basemap, error) {
	paths := make(map[string]*strings.Builder)
	bounds := geom.NewBounds(geom.XY)
	var skipped []string

	for i, f := range fc.Features {
		code, ok := featureCode(f)
		if !ok {
			skipped = append(skipped, featureLabel(f, i))
			continue
		}
		b, seen := paths[code]
		if !seen {
			b = &strings.Builder{}
			paths[code] = b
		}
		if err := appendGeometry(b, bounds, proj.For(code), f.Geometry); err != nil {
			return nil, fmt.Errorf("feature %s: %w", featureLabel(f, i), err)
		}
	}
	if len(paths) == 0 || bounds.IsEmpty() {
		return nil, ErrNoStates
	}

	shapes := make([]Shape, 0, len(paths))
	for code, b := range paths {
		name, _ := domain.StateName(code)
		shapes = append(shapes, Shape{Code: code, Name: name, Path: b.String()})
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i].Code < shapes[j].Code })
	sort.Strings(skipped)

	return &Basemap{shapes: shapes, bounds: bounds, skipped: skipped}, nil
}

// Shapes returns the outlines ordered by postal code.
func (b *Basemap) Shapes() []Shape {
	out := make([]Shape, len(b.shapes))
	copy(out, b.shapes)
	return out
}

// Codes returns the postal codes with an outline.
func (b *Basemap) Codes() []string {
	codes := make([]string, len(b.shapes))
	for i, s := range b.shapes {
		codes[i] = s.Code
	}
	return codes
}

// Missing returns the codes from want that have no outline.
func (b *Basemap) Missing(want []string) []string {
	have := make(map[string]struct{}, len(b.shapes))
	for _, s := range b.shapes {
		have[s.Code] = struct{}{}
	}
	var missing []string
	for _, code := range want {
		if _, ok := have[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

// Skipped returns the features that did not match a state.
func (b *Basemap) Skipped() []string {
	return append([]string(nil), b.skipped...)
}

// ViewBox returns the SVG viewBox enclosing every outline.
func (b *Basemap) ViewBox() string {
	minX, minY := b.bounds.Min(0)-viewBoxPadding, b.bounds.Min(1)-viewBoxPadding
	w := b.bounds.Max(0) - b.bounds.Min(0) + 2*viewBoxPadding
	h := b.bounds.Max(1) - b.bounds.Min(1) + 2*viewBoxPadding
	return strings.Join([]string{num(minX), num(minY), num(w), num(h)}, " ")
}

func featureCode(f *geojson.Feature) (string, bool) {
	if id := strings.ToUpper(strings.TrimSpace(f.ID)); len(id) == 2 {
		if _, ok := domain.StateName(id); ok {
			return id, true
		}
	}
	if name, ok := f.Properties["name"].(string); ok {
		return domain.PostalCode(name)
	}
	return "", false
}

func featureLabel(f *geojson.Feature, i int) string {
	if name, ok := f.Properties["name"].(string); ok && name != "" {
		return name
	}
	if f.ID != "" {
		return f.ID
	}
	return "#" + strconv.Itoa(i)
}

func appendGeometry(b *strings.Builder, bounds *geom.Bounds, p Projector, g geom.T) error {
	switch g := g.(type) {
	case *geom.Polygon:
		appendPolygon(b, bounds, p, g)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			appendPolygon(b, bounds, p, g.Polygon(i))
		}
	case nil:
		return errors.New("missing geometry")
	default:
		return fmt.Errorf("unsupported geometry %T", g)
	}
	return nil
}

func appendPolygon(b *strings.Builder, bounds *geom.Bounds, p Projector, poly *geom.Polygon) {
	for i := 0; i < poly.NumLinearRings(); i++ {
		coords := poly.LinearRing(i).Coords()
		if len(coords) < 3 {
			continue
		}
		flat := make([]float64, 0, 2*len(coords))
		for j, c := range coords {
			x, y := p.Project(c.X(), c.Y())
			flat = append(flat, x, y)
			if j == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(num(x))
			b.WriteByte(',')
			b.WriteString(num(y))
		}
		b.WriteByte('Z')
		bounds.Extend(geom.NewLinearRingFlat(geom.XY, flat))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
