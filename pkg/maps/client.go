package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

const (
	defaultBaseURL             = "https://maps.googleapis.com/maps/api"
	geocodePath                = "geocode/json"
	requestBodyReadLimit int64 = 1024

	statusOK           = "OK"
	statusZeroResults  = "ZERO_RESULTS"
	componentRoute     = "route"
	componentNumber    = "street_number"
	componentLocality  = "locality"
	componentPostTown  = "postal_town"
	componentAdminArea = "administrative_area_level_2"
)

var (
	errAPIKeyRequired = errors.New("google maps api key is required")
)

// Client wraps the Google Geocoding API used to place establishments on the map.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	region     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Maps API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLocale biases results towards the given language and region codes.
func WithLocale(language, region string) Option {
	return func(c *Client) {
		c.language = strings.TrimSpace(language)
		c.region = strings.TrimSpace(region)
	}
}

// NewClient builds the Google Maps client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// ResolveCoordinates geocodes a street address to latitude/longitude.
func (c *Client) ResolveCoordinates(ctx context.Context, street, postalCode, city string) (float64, float64, error) {
	if c == nil {
		return 0, 0, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	address := joinAddress(street, postalCode, city)
	if address == "" {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	params := url.Values{}
	params.Set("address", address)
	resp, err := c.geocode(ctx, params)
	if err != nil {
		return 0, 0, err
	}

	loc := resp.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

// ResolveAddress reverse geocodes coordinates to a street address and city.
func (c *Client) ResolveAddress(ctx context.Context, lat, lng float64) (string, string, error) {
	if c == nil {
		return "", "", pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	params := url.Values{}
	params.Set("latlng", formatLatLng(lat, lng))
	resp, err := c.geocode(ctx, params)
	if err != nil {
		return "", "", err
	}

	result := resp.Results[0]
	var route, number, locality, postTown, adminArea string
	for _, comp := range result.AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case componentRoute:
				route = comp.LongName
			case componentNumber:
				number = comp.LongName
			case componentLocality:
				locality = comp.LongName
			case componentPostTown:
				postTown = comp.LongName
			case componentAdminArea:
				adminArea = comp.LongName
			}
		}
	}

	address := strings.TrimSpace(strings.Join([]string{route, number}, " "))
	if address == "" {
		address = strings.TrimSpace(strings.SplitN(result.FormattedAddress, ",", 2)[0])
	}
	city := firstNonEmpty(locality, postTown, adminArea)
	if address == "" || city == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeDependency, "geocoding result is missing address components")
	}
	return address, city, nil
}

func (c *Client) geocode(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}

	endpoint := c.buildURL(geocodePath) + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	switch {
	case apiResp.Status == statusZeroResults || (apiResp.Status == statusOK && len(apiResp.Results) == 0):
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoding returned no results")
	case apiResp.Status != statusOK:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%s: %s", apiResp.Status, apiResp.ErrorMessage), "geocoding failed")
	}
	return &apiResp, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func joinAddress(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ", ")
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
