package polarview

import (
	"fmt"
	"strings"

	"github.com/handiism/polarview-downloader/internal/model"
	"github.com/venicegeo/geojson-go/geojson"
)

// FilenameProperty is the feature attribute naming the scene file.
const FilenameProperty = "filename"

// Feature is one record of a WFS feature collection.
type Feature struct {
	// ID is the feature id assigned by the server, e.g. "vw_s1subsets_n.1234".
	ID string

	// Filename is the scene file name, empty when the property is
	// missing or not a string.
	Filename string

	// Properties holds all attributes of the feature as decoded from JSON.
	Properties map[string]interface{}
}

// HasFilename reports whether the feature names a scene to download.
func (f Feature) HasFilename() bool {
	return f.Filename != ""
}

// ParseFeatures decodes a GeoJSON FeatureCollection.
//
// The returned error is a *model.Error of KindParse when the body is not
// valid JSON or not a FeatureCollection. Features are returned in
// document order, including those without a filename.
//
// Example:
//
//	features, err := ParseFeatures(body)
//	if err != nil {
//	    return err
//	}
//	for _, name := range Filenames(features) {
//	    fmt.Println(name)
//	}
func ParseFeatures(body []byte) ([]Feature, error) {
	parsed, err := geojson.Parse(body)
	if err != nil {
		return nil, model.NewError(model.KindParse, "parse", "", fmt.Errorf("invalid GeoJSON: %w", err))
	}

	fc, ok := parsed.(*geojson.FeatureCollection)
	if !ok {
		return nil, model.NewError(model.KindParse, "parse", "", fmt.Errorf("expected a FeatureCollection and got %T", parsed))
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		features = append(features, featureFrom(f))
	}

	return features, nil
}

func featureFrom(f *geojson.Feature) Feature {
	feature := Feature{
		ID:         f.IDStr(),
		Properties: f.Properties,
	}
	if name, ok := f.Properties[FilenameProperty].(string); ok {
		feature.Filename = strings.TrimSpace(name)
	}
	return feature
}

// Filenames returns the non-empty filenames of features in order.
func Filenames(features []Feature) []string {
	var names []string
	for _, f := range features {
		if f.HasFilename() {
			names = append(names, f.Filename)
		}
	}
	return names
}
