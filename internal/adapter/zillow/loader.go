package zillow

import (
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CSVLoader reads a wide-format Zillow export from disk.
// It implements pipeline.Extractor.
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for the CSV file at path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// Path returns the file the loader reads.
func (l *CSVLoader) Path() string {
	return l.path
}

// Extract reads the whole file into a frame. Every column is kept as a
// string; numeric parsing belongs to the transform so that bad cells are
// reported with their region and column.
func (l *CSVLoader) Extract(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open zillow csv: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read zillow csv %s: %w", l.path, df.Err)
	}
	return df, nil
}
