// Package geo builds the per-run geolocation index from the chronicle's map
// feed. The feed is a GeoJSON FeatureCollection whose features each carry an
// HTML fragment linking to a report; the link, with its scheme stripped, is
// the lookup key. Coverage is partial: reports without a marker stay
// uncoordinated, and markers may point at reports the pagination never
// reaches.
package geo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Point is one marker position. GeoJSON stores coordinates longitude-first;
// Point keeps them by name to rule out swaps downstream.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Index maps scheme-stripped report URLs to marker positions. Read-only
// after construction.
type Index struct {
	points map[string]Point
}

// NormalizeURL strips the http(s) scheme so feed links and report URLs
// compare equal regardless of protocol.
func NormalizeURL(u string) string {
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimPrefix(u, "http://")
}

// BuildIndex decodes the raw GeoJSON feed into an Index. Features without a
// usable link or point geometry are skipped with a log line. When two
// features link the same report the last one wins; the collision is logged
// so multi-location incidents stay visible in the run output.
func BuildIndex(raw []byte, logger *zap.Logger) (*Index, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson feed: %w", err)
	}

	points := make(map[string]Point, len(fc.Features))
	for _, f := range fc.Features {
		key, ok := featureLink(f)
		if !ok {
			logger.Warn("geo feature without report link skipped")
			continue
		}
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt == nil {
			logger.Warn("geo feature without point geometry skipped", zap.String("url", key))
			continue
		}
		p := Point{Longitude: pt.X(), Latitude: pt.Y()}
		if prev, exists := points[key]; exists {
			logger.Warn("duplicate geo marker, keeping last",
				zap.String("url", key),
				zap.Float64("previous_latitude", prev.Latitude),
				zap.Float64("previous_longitude", prev.Longitude),
			)
		}
		points[key] = p
	}

	logger.Info("geolocation index built", zap.Int("markers", len(points)))
	return &Index{points: points}, nil
}

// featureLink extracts the first anchor href out of the feature's embedded
// HTML fragment and normalizes it.
func featureLink(f *geojson.Feature) (string, bool) {
	text, ok := f.Properties["text"].(string)
	if !ok || text == "" {
		return "", false
	}
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", false
	}
	href, ok := frag.Find("a").First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return NormalizeURL(href), true
}

// Len reports the number of indexed markers.
func (i *Index) Len() int {
	return len(i.points)
}

// Lookup resolves a report URL (with or without scheme) to its marker.
func (i *Index) Lookup(url string) (Point, bool) {
	p, ok := i.points[NormalizeURL(url)]
	return p, ok
}
