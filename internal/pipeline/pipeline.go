package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
)

// ErrEmptyTable is returned when the transform leaves no observations; the
// slider has no bounds without at least one year.
var ErrEmptyTable = errors.New("annual table is empty")

// Extractor reads the raw wide-format frame from the source.
type Extractor interface {
	Extract(ctx context.Context) (dataframe.DataFrame, error)
}

// Transformer turns the raw frame into the annual table.
type Transformer interface {
	Transform(ctx context.Context, raw dataframe.DataFrame) (*domain.AnnualTable, error)
}

// Pipeline runs extract and transform once at startup.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability. A nil clock
// uses the real clock.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
	}
}

// Ready reports whether Run has produced a usable table.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil once the annual table has been built, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Run loads and transforms the dataset. Any error is fatal to the caller: the
// service has nothing to show without the table.
func (p *Pipeline) Run(ctx context.Context) (*domain.AnnualTable, error) {
	start := p.clock.Now()

	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.logger.Info("dataset extracted", "regions", raw.Nrow(), "columns", raw.Ncol())

	table, err := p.transformer.Transform(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	elapsed := p.clock.Since(start)
	unmapped := table.Unmapped()
	for _, region := range unmapped {
		p.logger.Warn("region has no postal code, it will not be drawn", "region", region)
	}

	first, last, _ := table.YearRange()
	p.metrics.PipelineDuration.Observe(elapsed.Seconds())
	p.metrics.DatasetRows.Set(float64(table.Len()))
	p.metrics.DatasetYears.Set(float64(len(table.Years())))
	p.metrics.UnmappedRegions.Set(float64(len(unmapped)))

	p.logger.Info("dataset ready",
		"rows", table.Len(),
		"states", len(table.States()),
		"first_year", first,
		"last_year", last,
		"duration", elapsed,
	)
	p.ready.Store(true)
	return table, nil
}
