package chart

import "github.com/wroge/wgs84"

// Projector maps longitude and latitude in degrees to SVG user units, with y
// growing downwards.
type Projector interface {
	Project(lon, lat float64) (x, y float64)
}

// inset places one Albers equal-area conic on the canvas: the projected
// centre lands on (tx, ty) and k is canvas units per earth radius.
type inset struct {
	crs       wgs84.ProjectedReferenceSystem
	meridian  float64
	radius    float64
	cx, cy    float64
	k, tx, ty float64
}

func newInset(meridian, centerLon, centerLat, parallel1, parallel2, k, tx, ty float64) *inset {
	datum := wgs84.WGS84()
	p := &inset{
		crs:      datum.AlbersEqualAreaConic(meridian, centerLat, parallel1, parallel2, 0, 0),
		meridian: meridian,
		radius:   datum.A(),
		k:        k,
		tx:       tx,
		ty:       ty,
	}
	p.cx, p.cy = p.raw(meridian+centerLon, centerLat)
	return p
}

// raw returns easting and northing in metres. Projection is used directly
// rather than through a geographic CRS so that longitudes past the
// antimeridian keep their unwrapped value and the Aleutians stay contiguous.
func (p *inset) raw(lon, lat float64) (float64, float64) {
	return p.crs.Projection.FromLonLat(unwrap(lon, p.meridian), lat, p.crs.Datum)
}

func (p *inset) Project(lon, lat float64) (float64, float64) {
	east, north := p.raw(lon, lat)
	return p.tx + p.k*(east-p.cx)/p.radius, p.ty - p.k*(north-p.cy)/p.radius
}

// AlbersUSA composes the lower 48 with scaled insets for Alaska and Hawaii
// placed below the south-west coast.
type AlbersUSA struct {
	lower48 *inset
	alaska  *inset
	hawaii  *inset
}

// Canvas size the projection is laid out for.
const (
	canvasWidth  = 960
	canvasHeight = 500
	usaScale     = 1070
)

// NewAlbersUSA returns the composite projection on a 960x500 canvas.
func NewAlbersUSA() *AlbersUSA {
	const k, tx, ty = usaScale, canvasWidth / 2, canvasHeight / 2
	return &AlbersUSA{
		lower48: newInset(-96, -0.6, 38.7, 29.5, 45.5, k, tx, ty),
		alaska:  newInset(-154, -2, 58.5, 55, 65, 0.35*k, tx-0.307*k, ty+0.201*k),
		hawaii:  newInset(-157, -3, 19.9, 8, 18, k, tx-0.205*k, ty+0.212*k),
	}
}

// For returns the projection used for a state.
func (a *AlbersUSA) For(code string) Projector {
	switch code {
	case "AK":
		return a.alaska
	case "HI":
		return a.hawaii
	default:
		return a.lower48
	}
}

// unwrap shifts lon by whole turns to within 180 degrees of the meridian.
func unwrap(lon, meridian float64) float64 {
	for lon-meridian > 180 {
		lon -= 360
	}
	for lon-meridian < -180 {
		lon += 360
	}
	return lon
}
