package chart

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Colour bounds for year-over-year change, in percent. Values outside take the
// end colours.
const (
	DefaultMin = -20.0
	DefaultMax = 30.0
)

// NoDataColor fills states without an observation for the selected year.
var NoDataColor = drawing.ColorFromHex("d9d9d9")

// rdYlGn is the 11-class ColorBrewer RdYlGn ramp, red to green.
var rdYlGn = []string{
	"a50026", "d73027", "f46d43", "fdae61", "fee08b", "ffffbf",
	"d9ef8b", "a6d96a", "66bd63", "1a9850", "006837",
}

// Scale maps a value onto a continuous colour ramp between Min and Max.
type Scale struct {
	Min, Max float64
	stops    []drawing.Color
}

// Stop is one colour stop of the ramp at Offset in [0, 1].
type Stop struct {
	Offset float64
	Color  drawing.Color
}

// NewRdYlGn returns the red-yellow-green diverging scale over [lo, hi].
func NewRdYlGn(lo, hi float64) (*Scale, error) {
	if !(lo < hi) {
		return nil, fmt.Errorf("colour scale: min %g must be below max %g", lo, hi)
	}
	stops := make([]drawing.Color, len(rdYlGn))
	for i, hex := range rdYlGn {
		stops[i] = drawing.ColorFromHex(hex)
	}
	return &Scale{Min: lo, Max: hi, stops: stops}, nil
}

// DefaultScale is RdYlGn over [DefaultMin, DefaultMax].
func DefaultScale() *Scale {
	s, _ := NewRdYlGn(DefaultMin, DefaultMax)
	return s
}

// Clamp limits v to [Min, Max].
func (s *Scale) Clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Color interpolates the ramp at v. NaN yields NoDataColor.
func (s *Scale) Color(v float64) drawing.Color {
	if math.IsNaN(v) {
		return NoDataColor
	}
	t := (s.Clamp(v) - s.Min) / (s.Max - s.Min)
	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	return lerp(s.stops[i], s.stops[i+1], pos-float64(i))
}

// Stops returns the ramp's colour stops for drawing a gradient legend.
func (s *Scale) Stops() []Stop {
	out := make([]Stop, len(s.stops))
	for i, c := range s.stops {
		out[i] = Stop{Offset: float64(i) / float64(len(s.stops)-1), Color: c}
	}
	return out
}

// Ticks returns the multiples of step within [Min, Max].
func (s *Scale) Ticks(step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var ticks []float64
	for v := math.Ceil(s.Min/step) * step; v <= s.Max; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// Position returns where v sits on the scale, 0 at Min and 1 at Max.
func (s *Scale) Position(v float64) float64 {
	return (s.Clamp(v) - s.Min) / (s.Max - s.Min)
}

// Hex formats c as #rrggbb for SVG fill attributes.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
