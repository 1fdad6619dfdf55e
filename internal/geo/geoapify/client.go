// Package geoapify is a thin HTTP client for the Geoapify geocoding API.
package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.geoapify.com"

// ErrRateLimited is returned when the provider rejects the call with HTTP 429.
var ErrRateLimited = errors.New("geoapify: rate limited")

// Endpoint selects the geocoding operation to call.
type Endpoint string

const (
	EndpointSearch       Endpoint = "search"
	EndpointAutocomplete Endpoint = "autocomplete"
	EndpointReverse      Endpoint = "reverse"
)

// Client talks to the Geoapify v1 geocoding endpoints. The zero value is not
// usable; construct with NewClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client with the given API key and an 8 second timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// WithBaseURL overrides the API host, used by tests against httptest servers.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Geocode runs a forward geocoding query against the given endpoint. Results
// are biased to Medellin and filtered to Colombia.
func (c *Client) Geocode(ctx context.Context, endpoint Endpoint, text string, limit int) ([]Item, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("format", "json")
	params.Set("lang", "es")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("filter", "countrycode:co")
	params.Set("bias", "proximity:-75.5812,6.2442")

	return c.call(ctx, endpoint, params)
}

// Reverse resolves coordinates to the nearest address at the given zoom.
func (c *Client) Reverse(ctx context.Context, lat, lon float64, zoom int) ([]Item, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("lang", "es")
	params.Set("zoom", strconv.Itoa(zoom))

	return c.call(ctx, EndpointReverse, params)
}

func (c *Client) call(ctx context.Context, endpoint Endpoint, params url.Values) ([]Item, error) {
	params.Set("apiKey", c.apiKey)

	requestURL := fmt.Sprintf("%s/v1/geocode/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("geoapify: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoapify: %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("geoapify: %s returned status %d", endpoint, resp.StatusCode)
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geoapify: decode %s response: %w", endpoint, err)
	}

	return parsed.Items(), nil
}
