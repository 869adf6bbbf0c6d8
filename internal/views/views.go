// Package views renders the map page and the choropleth fragment as templ
// components.
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/couchcryptid/zillow-map-service/internal/dashboard"
)

// Page text and asset locations.
const (
	Title      = "Zillow Map"
	Heading    = "Change in Zillow Home Value Index"
	Stylesheet = "https://cdn.jsdelivr.net/npm/bootswatch@5.3.3/dist/sandstone/bootstrap.min.css"
	HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

	ChartID  = "zillow_chart"
	SliderID = "year_slider"
)

// writer collects the first write error so components can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, s := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, s)
	}
}

// text writes s with HTML escaping.
func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (w *writer) attr(name, value string) {
	w.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// Fixed page markup. Only the slider carries per-dataset values.
const (
	pageHead = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1">` +
		`<title>` + Title + `</title>` +
		`<link rel="stylesheet" href="` + Stylesheet + `">` +
		`<script src="` + HTMXScript + `"></script></head>`

	pageBodyOpen = `<body><div class="container">` +
		`<h1 class="text-center mt-4">` + Heading + `</h1>`

	chartContainer = `<div class="m-5" id="` + ChartID + `" hx-get="/chart"` +
		` hx-trigger="load, change from:#` + SliderID + `"` +
		` hx-include="#` + SliderID + `" hx-sync="this:replace"></div>`

	sliderLabel = `<div class="m-5"><label class="form-label" for="` + SliderID + `">` +
		`Year <output id="year_value">`

	sliderInputOpen = `</output></label><input type="range" class="form-range" name="year" step="1"` +
		` list="year_marks" id="` + SliderID + `"`

	sliderInputClose = ` oninput="document.getElementById(&#39;year_value&#39;).value = this.value">` +
		`<datalist id="year_marks">`

	sliderTicksOpen = `</datalist><div class="d-flex justify-content-between small text-muted">`

	pageClose = `</div></body></html>`
)

// Index is the full page: heading, chart container, and year slider. The
// container fetches /chart on load and on every slider change; hx-sync
// replace aborts an in-flight request so only the latest value is drawn.
func Index(slider dashboard.Slider) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(pageHead, pageBodyOpen, chartContainer)
		yearSlider(w, slider)
		w.raw(pageClose)
		return w.err
	})
}

func yearSlider(w *writer, s dashboard.Slider) {
	w.raw(sliderLabel, itoa(s.Value), sliderInputOpen)
	w.attr("min", itoa(s.Min))
	w.attr("max", itoa(s.Max))
	w.attr("value", itoa(s.Value))
	w.raw(sliderInputClose)
	for _, year := range s.Marks {
		w.raw(`<option value="`, itoa(year), `" label="`, itoa(year), `"></option>`)
	}
	w.raw(sliderTicksOpen)
	for _, year := range s.Marks {
		w.raw("<span>", itoa(year), "</span>")
	}
	w.raw(`</div></div>`)
}
