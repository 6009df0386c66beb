package polarview

import (
	"context"
	"errors"
	"time"

	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/http"
	"github.com/handiism/polarview-downloader/internal/model"
)

// Client queries the PolarView WFS service.
//
// Example usage:
//
//	client := NewClient(settings, nil)
//	features, err := client.Features(ctx, date)
//	if err != nil {
//	    return err // *model.Error, see model.KindOf
//	}
type Client struct {
	settings   *config.Settings
	httpClient *http.Client
}

// NewClient creates a WFS client. When httpClient is nil, one is built from
// the settings with the query timeout.
func NewClient(settings *config.Settings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.NewClient(http.Options{
			Timeout:           settings.QueryTimeout,
			UserAgent:         settings.UserAgent,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
	}
	return &Client{settings: settings, httpClient: httpClient}
}

// Features fetches all features acquired on date.
//
// Network failures, non-2xx responses and undecodable bodies are returned
// as *model.Error with KindNetwork, KindStatus and KindParse respectively.
// An empty collection is not an error.
func (c *Client) Features(ctx context.Context, date time.Time) ([]Feature, error) {
	requestURL, err := NewQuery(c.settings, date).URL()
	if err != nil {
		return nil, model.NewError(model.KindParse, "query", c.settings.WFSURL, err)
	}

	body, err := c.httpClient.Get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	features, err := ParseFeatures(body)
	if err != nil {
		var e *model.Error
		if errors.As(err, &e) {
			e.URL = requestURL
		}
		return nil, err
	}

	return features, nil
}
