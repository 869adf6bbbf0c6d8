package zillow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zillow-state-data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVLoader_Extract(t *testing.T) {
	path := writeFile(t, "RegionID,SizeRank,RegionName,RegionType,StateName,2020-12-31,2021-12-31\n"+
		"9,0,California,state,CA,100.5,110\n"+
		"54,1,Texas,state,TX,,220\n")

	df, err := NewCSVLoader(path).Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"RegionID", "SizeRank", "RegionName", "RegionType", "StateName", "2020-12-31", "2021-12-31"}, df.Names())
	assert.Equal(t, []string{"California", "Texas"}, df.Col("RegionName").Records())
	assert.Equal(t, "100.5", df.Col("2020-12-31").Records()[0])
}

func TestCSVLoader_MissingFile(t *testing.T) {
	_, err := NewCSVLoader(filepath.Join(t.TempDir(), "nope.csv")).Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVLoader_RaggedRows(t *testing.T) {
	path := writeFile(t, "RegionID,SizeRank,RegionName\n1,0\n")

	_, err := NewCSVLoader(path).Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read zillow csv")
}

func TestCSVLoader_EmptyFile(t *testing.T) {
	_, err := NewCSVLoader(writeFile(t, "")).Extract(context.Background())
	require.Error(t, err)
}

func TestCSVLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVLoader("unused.csv").Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
