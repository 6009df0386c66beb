package polarview

import (
	"fmt"
	"net/url"
	"time"

	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/model"
)

// Query describes one WFS GetFeature request for a single acquisition day.
//
// Example:
//
//	q := NewQuery(config.DefaultSettings(), date)
//	fmt.Println(q.URL())
//	// https://geos.polarview.aq/geoserver/wfs?cql_filter=acqtime+DURING+...&outputFormat=application%2Fjson&...
type Query struct {
	// Endpoint is the WFS service URL without query string.
	Endpoint string

	Version      string
	TypeName     string
	OutputFormat string

	// TimeField is the feature attribute the window filter applies to.
	TimeField string

	// Window is the acquisition time range.
	Window model.TimeWindow
}

// NewQuery builds the query for date from the WFS settings.
func NewQuery(settings *config.Settings, date time.Time) *Query {
	return &Query{
		Endpoint:     settings.WFSURL,
		Version:      settings.WFSVersion,
		TypeName:     settings.TypeName,
		OutputFormat: settings.OutputFormat,
		TimeField:    settings.TimeField,
		Window:       model.WindowFor(date),
	}
}

// CQLFilter returns the predicate selecting features whose field lies in w.
//
//	CQLFilter("acqtime", model.WindowFor(date))
//	// "acqtime DURING 2024-01-01T00:00:00Z/2024-01-01T23:59:59Z"
func CQLFilter(field string, w model.TimeWindow) string {
	return fmt.Sprintf("%s DURING %s", field, w.String())
}

// Filter returns the CQL filter of the query.
func (q *Query) Filter() string {
	return CQLFilter(q.TimeField, q.Window)
}

// Params returns the query string parameters.
func (q *Query) Params() url.Values {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", q.Version)
	params.Set("request", "GetFeature")
	params.Set("typeName", q.TypeName)
	params.Set("outputFormat", q.OutputFormat)
	params.Set("cql_filter", q.Filter())
	return params
}

// URL returns the full request URL. Parameters already present on
// Endpoint are kept unless the query sets them.
func (q *Query) URL() (string, error) {
	u, err := url.Parse(q.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid wfs url %q: %w", q.Endpoint, err)
	}

	values := u.Query()
	for key, vals := range q.Params() {
		values[key] = vals
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}
