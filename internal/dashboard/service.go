// Package dashboard holds the read-only state behind the map page and answers
// slider events with a freshly built figure.
package dashboard

import (
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/zillow-map-service/internal/chart"
	"github.com/couchcryptid/zillow-map-service/internal/domain"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
)

// Slider describes the year control: bounds, initial value, and one mark per
// distinct year.
type Slider struct {
	Min   int
	Max   int
	Value int
	Marks []int
}

// Service answers chart requests from the annual table. It holds no mutable
// state, so concurrent calls need no locking.
type Service struct {
	table   *domain.AnnualTable
	basemap *chart.Basemap
	scale   *chart.Scale
	slider  Slider
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewService returns a Service over table. The table must hold at least one
// year. A nil clock uses the real clock.
func NewService(table *domain.AnnualTable, basemap *chart.Basemap, scale *chart.Scale, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) (*Service, error) {
	first, last, ok := table.YearRange()
	if !ok {
		return nil, errors.New("dashboard: annual table is empty")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if missing := basemap.Missing(table.States()); len(missing) > 0 {
		logger.Warn("states with data have no outline", "codes", missing)
	}
	return &Service{
		table:   table,
		basemap: basemap,
		scale:   scale,
		slider:  Slider{Min: first, Max: last, Value: last, Marks: table.Years()},
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}, nil
}

// Slider returns the year control. Value starts at the latest year.
func (s *Service) Slider() Slider {
	sl := s.slider
	sl.Marks = append([]int(nil), s.slider.Marks...)
	return sl
}

// DefaultYear is the year shown before the slider moves.
func (s *Service) DefaultYear() int {
	return s.slider.Value
}

// Basemap returns the projected outlines.
func (s *Service) Basemap() *chart.Basemap {
	return s.basemap
}

// Scale returns the colour scale.
func (s *Service) Scale() *chart.Scale {
	return s.scale
}

// Chart builds the figure for year. A year without rows gives an empty
// figure, not an error.
func (s *Service) Chart(year int) chart.Figure {
	start := s.clock.Now()
	fig := chart.BuildFigure(year, s.table, s.scale)
	s.metrics.ChartRenderDuration.Observe(s.clock.Since(start).Seconds())

	outcome := "ok"
	if fig.Empty() {
		outcome = "empty"
		s.logger.Debug("no observations for year", "year", year)
	}
	s.metrics.ChartRenders.WithLabelValues(outcome).Inc()
	return fig
}
