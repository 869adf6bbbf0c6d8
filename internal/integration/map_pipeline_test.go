//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zillow-map-service/internal/adapter/boundary"
	httpadapter "github.com/couchcryptid/zillow-map-service/internal/adapter/http"
	"github.com/couchcryptid/zillow-map-service/internal/adapter/zillow"
	"github.com/couchcryptid/zillow-map-service/internal/chart"
	"github.com/couchcryptid/zillow-map-service/internal/dashboard"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
	"github.com/couchcryptid/zillow-map-service/internal/pipeline"
)

const zhviCSV = `RegionID,SizeRank,RegionName,RegionType,StateName,2019-11-30,2019-12-31,2020-06-30,2020-12-31,2021-12-31,2022-12-31
9,0,California,state,CA,99,100,104,100,110,121
54,1,Texas,state,TX,,,150,200,190,
11,2,Colorado,state,CO,80,80,82,0,90,99
72,3,Puerto Rico,territory,PR,40,40,41,42,43,44
`

const usStates = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "id": "CA", "properties": {"name": "California"},
   "geometry": {"type": "Polygon", "coordinates": [[[-124.4, 42], [-120, 42], [-120, 39], [-114.1, 34.9], [-117.1, 32.5], [-124.4, 42]]]}},
  {"type": "Feature", "properties": {"name": "Texas"},
   "geometry": {"type": "Polygon", "coordinates": [[[-106.6, 32], [-94, 33.5], [-93.5, 29.7], [-97.1, 25.9], [-106.6, 32]]]}},
  {"type": "Feature", "id": "CO", "properties": {"name": "Colorado"},
   "geometry": {"type": "Polygon", "coordinates": [[[-109.05, 41], [-102.05, 41], [-102.05, 37], [-109.05, 37], [-109.05, 41]]]}},
  {"type": "Feature", "id": "72", "properties": {"name": "Puerto Rico"},
   "geometry": {"type": "Polygon", "coordinates": [[[-67.3, 18.5], [-65.6, 18.5], [-65.6, 17.9], [-67.3, 17.9], [-67.3, 18.5]]]}}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "zillow-state-data.csv", zhviCSV)
	boundaryPath := writeFile(t, dir, "us-states.json", usStates)

	logger := slog.Default()
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewRealClock()

	p := pipeline.New(zillow.NewCSVLoader(dataPath), pipeline.NewTransformer(logger), logger, metrics, clock)
	table, err := p.Run(context.Background())
	require.NoError(t, err)

	fc, err := boundary.Load(boundaryPath)
	require.NoError(t, err)
	bm, err := chart.NewBasemap(fc, chart.NewAlbersUSA())
	require.NoError(t, err)

	svc, err := dashboard.NewService(table, bm, chart.DefaultScale(), logger, metrics, clock)
	require.NoError(t, err)

	srv := httptest.NewServer(httpadapter.NewServer(":0", true, svc, p, logger))
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMapPipeline_EndToEnd(t *testing.T) {
	srv := startServer(t)

	status, body := fetch(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, status, body)

	status, body = fetch(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `min="2020" max="2022" value="2022"`)

	// 2020: Texas has no December 2019 value, Colorado is defined.
	status, body = fetch(t, srv.URL+"/chart?year=2020")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "California (CA) 2020: 0.0%")
	assert.Contains(t, body, "Texas (TX) 2020: no data")
	assert.Contains(t, body, "Colorado (CO) 2020: -100.0%")
	assert.NotContains(t, body, "Puerto Rico")

	// 2021: Colorado's predecessor is zero, so the change is infinite and
	// takes the top colour.
	_, body = fetch(t, srv.URL+"/chart?year=2021")
	assert.Contains(t, body, "California (CA) 2021: +10.0%")
	assert.Contains(t, body, "Texas (TX) 2021: -5.0%")
	assert.Contains(t, body, "Colorado (CO) 2021: +∞%")
	assert.Contains(t, body, `fill="#006837"`)

	// 2022: Texas value is missing.
	_, body = fetch(t, srv.URL+"/chart")
	assert.Contains(t, body, `data-year="2022"`)
	assert.Contains(t, body, "California (CA) 2022: +10.0%")
	assert.Contains(t, body, "Texas (TX) 2022: no data")
	assert.Contains(t, body, "Colorado (CO) 2022: +10.0%")

	status, _ = fetch(t, srv.URL+"/chart?year=abc")
	assert.Equal(t, http.StatusBadRequest, status)
}
