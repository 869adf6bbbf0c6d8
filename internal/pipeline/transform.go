package pipeline

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"

	"github.com/couchcryptid/zillow-map-service/internal/domain"
)

// ZHVITransformer implements Transformer with the domain transform.
type ZHVITransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ZHVITransformer.
func NewTransformer(logger *slog.Logger) *ZHVITransformer {
	return &ZHVITransformer{logger: logger}
}

func (t *ZHVITransformer) Transform(ctx context.Context, raw dataframe.DataFrame) (*domain.AnnualTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := domain.Transform(raw)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("transform complete", "regions_in", raw.Nrow(), "rows_out", table.Len())
	return table, nil
}
