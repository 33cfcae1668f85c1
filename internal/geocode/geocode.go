// Package geocode resolves free-form addresses to a canonical address and
// coordinates using the Google Geocoding API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"googlemaps.github.io/maps"

	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/krypto"
)

// Result is a resolved address.
type Result struct {
	FormattedAddress string
	Latitude         float64
	Longitude        float64
}

// Settings contains the settings for the geocoding API.
type Settings struct {
	APIKey krypto.Secret
	// BaseURL overrides the Google API host, for example in tests.
	BaseURL string
}

// Client resolves addresses. A single attempt is made per address.
type Client struct {
	maps *maps.Client
}

// NewClient creates a client that uses httpClient for requests.
func NewClient(httpClient *http.Client, s Settings) (*Client, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(s.APIKey.SecretValue()),
		maps.WithHTTPClient(httpClient),
	}
	if s.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(s.BaseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &Client{maps: c}, nil
}

// Resolve looks up address. When several results are found the first one
// is used. Addresses that can not be resolved result in errorz.ErrBadRequest,
// an unreachable API results in errorz.ErrUpstream.
func (c *Client) Resolve(ctx context.Context, address string) (Result, error) {
	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
	})
	if err != nil {
		if isTransportErr(err) {
			return Result{}, fmt.Errorf("%w: geocoding failed: %w", errorz.ErrUpstream, err)
		}
		return Result{}, errorz.Public{Msg: "Invalid property address", Err: errors.Join(errorz.ErrBadRequest, err)}
	}

	if len(results) < 1 {
		return Result{}, errorz.NewPublic("Invalid property address", errorz.ErrBadRequest)
	}

	first := results[0]

	return Result{
		FormattedAddress: first.FormattedAddress,
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
	}, nil
}

func isTransportErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
