package http_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	httpadapter "github.com/couchcryptid/zillow-map-service/internal/adapter/http"
	"github.com/couchcryptid/zillow-map-service/internal/chart"
	"github.com/couchcryptid/zillow-map-service/internal/dashboard"
	"github.com/couchcryptid/zillow-map-service/internal/domain"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	square := func(lon, lat float64) *geom.Polygon {
		return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
			{lon, lat}, {lon + 3, lat}, {lon + 3, lat - 3}, {lon, lat - 3}, {lon, lat},
		}})
	}
	bm, err := chart.NewBasemap(&geojson.FeatureCollection{Features: []*geojson.Feature{
		{ID: "CA", Geometry: square(-123, 41)},
		{ID: "NV", Geometry: square(-119, 41)},
		{ID: "PR", Geometry: square(-67, 18.5), Properties: map[string]any{"name": "Puerto Rico"}},
	}}, chart.NewAlbersUSA())
	require.NoError(t, err)

	table := domain.NewAnnualTable([]domain.Observation{
		{Region: "California", State: "CA", Year: 2020, ZHVI: 100, YoY: 5},
		{Region: "California", State: "CA", Year: 2021, ZHVI: 110, YoY: 10},
		{Region: "Nevada", State: "NV", Year: 2021, ZHVI: 90, YoY: -25},
		{Region: "Puerto Rico", Year: 2021, ZHVI: 80, YoY: 2},
	})
	svc, err := dashboard.NewService(table, bm, chart.DefaultScale(), slog.Default(),
		observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	require.NoError(t, err)

	return httpadapter.NewServer(":0", false, svc, &mockReadiness{err: readyErr}, slog.Default())
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexPage(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Zillow Map</title>")
	assert.Contains(t, body, `min="2020" max="2021" value="2021"`)
	assert.Equal(t, 2, strings.Count(body, "<option"))
}

func TestChartDefaultsToLatestYear(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/chart")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-year="2021"`)
	assert.Contains(t, rec.Body.String(), "Nevada (NV) 2021: -25.0%")
}

func TestChartForYear(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/chart?year=2020")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "California (CA) 2020: +5.0%")
	assert.Contains(t, body, "Nevada (NV) 2020: no data")
}

func TestChartYearWithoutRows(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/chart?year=1999")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, fmt.Sprintf(`fill="%s"`, chart.Hex(chart.NoDataColor))))
	assert.Contains(t, body, "No data for 1999")
}

func TestChartRejectsNonIntegerYear(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/chart?year=twenty")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartOmitsUnmappedRegions(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/chart?year=2021")

	assert.NotContains(t, rec.Body.String(), "Puerto Rico")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<path"))
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(t, fmt.Errorf("not ready yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRouteReturns404(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
