// Package boundary loads state outlines from a GeoJSON FeatureCollection,
// such as the us-states.json file shipped with most choropleth examples.
package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// ErrNoFeatures is returned for a collection without any features.
var ErrNoFeatures = errors.New("boundary file has no features")

// Load reads and decodes the FeatureCollection at path.
func Load(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	return Decode(data)
}

// Decode parses a GeoJSON FeatureCollection.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode boundary file: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return &fc, nil
}
