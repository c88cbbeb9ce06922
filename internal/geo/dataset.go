// Package geo owns the read-only reference datasets and the resource
// locator built on top of them.
//
// Both datasets are loaded once at process start into an immutable Data
// handle that is injected into the dialogue engine. Nothing invalidates them
// within a process lifetime.
package geo

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/masshrc/chatbot/internal/domain"
)

// postcodeProperty is the key of the ZIP boundary dataset that carries the
// 5-digit postal code as a string.
const postcodeProperty = "POSTCODE"

// Data is the immutable reference-data handle: the resource table and the
// ZIP boundary polygons in geographic (WGS-84) coordinates.
type Data struct {
	resources   []domain.Resource
	boundaries  map[string]orb.MultiPolygon
	hasGeometry bool
}

// Load reads the resource CSV and the ZIP boundary GeoJSON from disk.
func Load(resourceCSVPath, zipBoundaryPath string) (*Data, error) {
	raw, err := os.ReadFile(resourceCSVPath)
	if err != nil {
		return nil, fmt.Errorf("read resource dataset: %w", err)
	}

	hasGeometry, err := csvHasGeometryColumns(raw)
	if err != nil {
		return nil, fmt.Errorf("inspect resource dataset header: %w", err)
	}

	var resources []domain.Resource
	if err := gocsv.UnmarshalBytes(raw, &resources); err != nil {
		return nil, fmt.Errorf("decode resource dataset: %w", err)
	}

	boundaries, err := loadBoundaries(zipBoundaryPath)
	if err != nil {
		return nil, err
	}

	return &Data{
		resources:   resources,
		boundaries:  boundaries,
		hasGeometry: hasGeometry,
	}, nil
}

// NewData builds a handle from in-memory datasets. Tests use it to supply
// synthetic resources and boundaries.
func NewData(resources []domain.Resource, boundaries map[string]orb.MultiPolygon) *Data {
	return &Data{
		resources:   resources,
		boundaries:  boundaries,
		hasGeometry: true,
	}
}

// Resources returns the full resource table.
func (d *Data) Resources() []domain.Resource {
	return d.resources
}

// csvHasGeometryColumns checks the CSV header for the longitude and latitude
// columns. gocsv leaves missing columns zero-valued, which would silently
// place every resource on Null Island, so the header is checked explicitly.
func csvHasGeometryColumns(raw []byte) (bool, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	header, err := r.Read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var hasLon, hasLat bool
	for _, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "longitude":
			hasLon = true
		case "latitude":
			hasLat = true
		}
	}
	return hasLon && hasLat, nil
}

func loadBoundaries(path string) (map[string]orb.MultiPolygon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zip boundary dataset: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode zip boundary dataset: %w", err)
	}

	boundaries := make(map[string]orb.MultiPolygon, len(fc.Features))
	for _, feature := range fc.Features {
		postcode := feature.Properties.MustString(postcodeProperty, "")
		if postcode == "" {
			continue
		}

		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			boundaries[postcode] = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			boundaries[postcode] = g
		}
	}

	if len(boundaries) == 0 {
		return nil, fmt.Errorf("zip boundary dataset %s contains no %s-keyed polygons", path, postcodeProperty)
	}
	return boundaries, nil
}
