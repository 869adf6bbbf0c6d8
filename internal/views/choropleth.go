package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/couchcryptid/zillow-map-service/internal/chart"
)

// Colour bar geometry, in legend user units.
const (
	legendWidth  = 80
	legendHeight = 300
	barX         = 10
	barY         = 30
	barWidth     = 18
	barHeight    = 250
	tickStep     = 10
	legendTitle  = "YOY"
)

// Fixed choropleth markup.
const (
	figureOpen    = `<figure class="d-flex align-items-start"`
	mapSVGOpen    = `><svg xmlns="http://www.w3.org/2000/svg" class="flex-grow-1" role="img"`
	statesOpen    = `><g class="states" stroke="#ffffff" stroke-width="0.5">`
	statesClose   = `</g></svg>`
	emptyCaption  = `<figcaption class="text-muted">No data for `
	captionClose  = `</figcaption>`
	figureClose   = `</figure>`
	legendSVGOpen = `<svg xmlns="http://www.w3.org/2000/svg" class="colorbar"`
	gradientOpen  = `><defs><linearGradient id="yoy_gradient" x1="0" y1="1" x2="0" y2="0">`
	gradientClose = `</linearGradient></defs>`
	legendBarOpen = `<rect fill="url(#yoy_gradient)"`
	tickOpen      = `<g class="tick"><line stroke="#333333"`
	tickLabelOpen = `></line><text font-size="11" dominant-baseline="middle"`
	tickClose     = "</text></g>"
)

// Choropleth renders every outline in bm, filled from fig. States without a
// region in the figure get the no-data colour, so an empty figure draws a
// neutral map.
func Choropleth(fig chart.Figure, bm *chart.Basemap, scale *chart.Scale) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(figureOpen)
		w.attr("data-year", itoa(fig.Year))
		w.raw(mapSVGOpen)
		w.attr("viewBox", bm.ViewBox())
		w.attr("aria-label", Heading+", "+itoa(fig.Year))
		w.raw(statesOpen)

		noData := chart.Hex(chart.NoDataColor)
		for _, shape := range bm.Shapes() {
			fill, label := noData, shape.Name+" ("+shape.Code+") "+itoa(fig.Year)+": no data"
			if r, ok := fig.Region(shape.Code); ok {
				fill, label = r.Fill, r.Label(fig.Year)
			}
			w.raw("<path")
			w.attr("data-state", shape.Code)
			w.attr("d", shape.Path)
			w.attr("fill", fill)
			w.raw("><title>")
			w.text(label)
			w.raw("</title></path>")
		}
		w.raw(statesClose)

		colorbar(w, scale)
		if fig.Empty() {
			w.raw(emptyCaption)
			w.text(itoa(fig.Year))
			w.raw(captionClose)
		}
		w.raw(figureClose)
		return w.err
	})
}

// colorbar draws the vertical legend, lowest value at the bottom.
func colorbar(w *writer, scale *chart.Scale) {
	w.raw(legendSVGOpen)
	w.attr("width", itoa(legendWidth))
	w.attr("height", itoa(legendHeight))
	w.attr("viewBox", "0 0 "+itoa(legendWidth)+" "+itoa(legendHeight))
	w.raw(gradientOpen)
	for _, stop := range scale.Stops() {
		w.raw("<stop")
		w.attr("offset", fmtFloat(stop.Offset, 2))
		w.attr("stop-color", chart.Hex(stop.Color))
		w.raw("></stop>")
	}
	w.raw(gradientClose)

	w.raw(`<text font-size="12"`)
	w.attr("x", itoa(barX))
	w.attr("y", itoa(barY-10))
	w.raw(">")
	w.text(legendTitle)
	w.raw("</text>")

	w.raw(legendBarOpen)
	w.attr("x", itoa(barX))
	w.attr("y", itoa(barY))
	w.attr("width", itoa(barWidth))
	w.attr("height", itoa(barHeight))
	w.raw("></rect>")

	for _, v := range scale.Ticks(tickStep) {
		y := fmtFloat(barY+(1-scale.Position(v))*barHeight, 1)
		w.raw(tickOpen)
		w.attr("x1", itoa(barX+barWidth))
		w.attr("x2", itoa(barX+barWidth+4))
		w.attr("y1", y)
		w.attr("y2", y)
		w.raw(tickLabelOpen)
		w.attr("x", itoa(barX+barWidth+7))
		w.attr("y", y)
		w.raw(">")
		w.text(strconv.FormatFloat(v, 'f', -1, 64))
		w.raw(tickClose)
	}
	w.raw("</svg>")
}

func fmtFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
