package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
	"github.com/couchcryptid/zillow-map-service/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	frame dataframe.DataFrame
	err   error
	clock *clockwork.FakeClock
}

func (m *mockExtractor) Extract(_ context.Context) (dataframe.DataFrame, error) {
	if m.clock != nil {
		m.clock.Advance(250 * time.Millisecond)
	}
	if m.err != nil {
		return dataframe.DataFrame{}, m.err
	}
	return m.frame, nil
}

type mockTransformer struct {
	table *domain.AnnualTable
	err   error
}

func (m *mockTransformer) Transform(_ context.Context, _ dataframe.DataFrame) (*domain.AnnualTable, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	clock := clockwork.NewFakeClock()
	table := domain.NewAnnualTable([]domain.Observation{
		{Region: "California", State: "CA", Year: 2021, ZHVI: 110, YoY: 10},
		{Region: "Puerto Rico", Year: 2021, ZHVI: 90, YoY: -2},
	})
	ext := &mockExtractor{frame: dataframe.LoadRecords([][]string{{"RegionName"}, {"California"}}), clock: clock}
	metrics := observability.NewMetricsForTesting()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	p := pipeline.New(ext, &mockTransformer{table: table}, logger, metrics, clock)
	require.Error(t, p.CheckReadiness(context.Background()))

	got, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, table, got)
	assert.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.DatasetRows), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.DatasetYears), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.UnmappedRegions), 0)
	assert.Contains(t, logs.String(), `region="Puerto Rico"`)
	assert.Contains(t, logs.String(), "duration=250ms")
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	ext := &mockExtractor{err: errors.New("no such file")}
	p := pipeline.New(ext, &mockTransformer{}, slog.Default(), observability.NewMetricsForTesting(), nil)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
	assert.False(t, p.Ready())
}

func TestPipeline_Run_TransformError(t *testing.T) {
	ext := &mockExtractor{frame: dataframe.LoadRecords([][]string{{"RegionName"}, {"Texas"}})}
	tfm := &mockTransformer{err: domain.ErrDuplicateObservation}
	p := pipeline.New(ext, tfm, slog.Default(), observability.NewMetricsForTesting(), nil)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrDuplicateObservation)
	assert.False(t, p.Ready())
}

func TestPipeline_Run_EmptyTable(t *testing.T) {
	ext := &mockExtractor{frame: dataframe.LoadRecords([][]string{{"RegionName"}, {"Texas"}})}
	tfm := &mockTransformer{table: domain.NewAnnualTable(nil)}
	p := pipeline.New(ext, tfm, slog.Default(), observability.NewMetricsForTesting(), nil)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, pipeline.ErrEmptyTable)
	assert.False(t, p.Ready())
}

func TestZHVITransformer_Transform(t *testing.T) {
	raw := dataframe.LoadRecords([][]string{
		{"RegionID", "SizeRank", "RegionName", "RegionType", "StateName", "2019-12-31", "2020-12-31", "2021-12-31"},
		{"9", "0", "California", "state", "CA", "90", "100", "110"},
	})

	tfm := pipeline.NewTransformer(slog.Default())
	table, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	obs := table.ForYear(2021)
	require.Len(t, obs, 1)
	assert.Equal(t, "CA", obs[0].State)
	assert.InDelta(t, 10.0, obs[0].YoY, 1e-9)
}

func TestZHVITransformer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.NewTransformer(slog.Default()).Transform(ctx, dataframe.DataFrame{})
	require.ErrorIs(t, err, context.Canceled)
}
