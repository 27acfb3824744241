package globemesh

import (
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeaturesFromGeoJSON decodes a GeoJSON feature collection into pipeline
// features. A MultiPolygon becomes one Feature per polygon, suffixed with
// the polygon index. Features with malformed or non-polygonal geometry are
// logged and skipped, never fatal.
func FeaturesFromGeoJSON(data []byte) ([]*Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	var features []*Feature

	for idx, feat := range fc.Features {
		id := geojsonFeatureID(feat, idx)
		polarHint := readBoolProp(feat, "polar")

		switch g := feat.Geometry.(type) {
		case orb.Polygon:
			features = appendPolygon(features, id, g, polarHint)

		case orb.MultiPolygon:
			for n, polygon := range g {
				partID := fmt.Sprintf("%s#%d", id, n)
				features = appendPolygon(features, partID, polygon, polarHint)
			}

		default:
			slog.Warn("skipping feature with unsupported geometry",
				slog.String("feature", id),
				slog.String("type", feat.Geometry.GeoJSONType()))
		}
	}

	return features, nil
}

func appendPolygon(features []*Feature, id string, polygon orb.Polygon, polarHint bool) []*Feature {
	if len(polygon) == 0 {
		return features
	}

	feature, err := NewFeature(id, polygon[0], polygon[1:]...)
	if err != nil {
		slog.Warn("skipping malformed feature",
			slog.String("feature", id),
			slog.Any("error", err))
		return features
	}

	feature.PolarHint = polarHint
	return append(features, feature)
}

func geojsonFeatureID(feat *geojson.Feature, idx int) string {
	if feat.ID != nil {
		return fmt.Sprintf("%v", feat.ID)
	}

	for _, key := range []string{"id", "iso_a3", "name"} {
		if value, found := feat.Properties[key]; found {
			if str, ok := value.(string); ok && str != "" {
				return str
			}
		}
	}

	return fmt.Sprintf("feature-%d", idx)
}

func readBoolProp(feat *geojson.Feature, key string) bool {
	value, found := feat.Properties[key]
	if !found {
		return false
	}

	b, ok := value.(bool)
	return ok && b
}
