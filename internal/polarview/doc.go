// Package polarview queries the PolarView GeoServer WFS for Sentinel-1
// scenes and extracts their filenames.
//
// # Query
//
// A Query selects every feature of one type whose acquisition time falls
// inside a whole UTC day, using a CQL DURING predicate:
//
//	q := polarview.NewQuery(settings, date)
//	q.Filter() // "acqtime DURING 2024-01-01T00:00:00Z/2024-01-01T23:59:59Z"
//	u, _ := q.URL()
//
// # Fetching Features
//
//	client := polarview.NewClient(settings, nil)
//	features, err := client.Features(ctx, date)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range polarview.Filenames(features) {
//	    fmt.Println(name)
//	}
//
// # Response Format
//
// The service answers with a GeoJSON FeatureCollection. Only the
// "filename" property of each feature is used; features without it are
// kept by ParseFeatures but dropped by Filenames.
package polarview
