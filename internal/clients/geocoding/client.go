package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrNoResults = errors.New("no geocoding results")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Location struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	Province         entities.Province
}

type Prediction struct {
	Description string
	PlaceID     string
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	country     string
}

func NewClient(baseURL, apiKey, country string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		country:    country,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
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

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

// Geocode resolves a free-text address to coordinates using the first result.
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {

	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, fmt.Errorf("address is empty")
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("components", "country:"+c.country)
	params.Set("key", c.apiKey)

	var response geocodeResponse
	if err := c.get(ctx, "geocode", "/geocode/json?"+params.Encode(), &response); err != nil {
		return Location{}, err
	}
	if err := checkStatus(response.Status, response.ErrorMessage); err != nil {
		return Location{}, err
	}

	result := response.Results[0]
	location := Location{
		Lat:              result.Geometry.Location.Lat,
		Lng:              result.Geometry.Location.Lng,
		FormattedAddress: result.FormattedAddress,
		Province:         entities.ProvinceAny,
	}
	for _, component := range result.AddressComponents {
		for _, kind := range component.Types {
			if kind == "administrative_area_level_1" && entities.Province(component.ShortName).IsValid() {
				location.Province = entities.Province(component.ShortName)
			}
		}
	}
	return location, nil
}

func (c *Client) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("components", "country:"+c.country)
	params.Set("key", c.apiKey)

	var response autocompleteResponse
	if err := c.get(ctx, "autocomplete", "/place/autocomplete/json?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	if err := checkStatus(response.Status, response.ErrorMessage); err != nil {
		if errors.Is(err, ErrNoResults) {
			return nil, nil
		}
		return nil, err
	}

	predictions := make([]Prediction, 0, len(response.Predictions))
	for _, p := range response.Predictions {
		predictions = append(predictions, Prediction{Description: p.Description, PlaceID: p.PlaceID})
	}
	return predictions, nil
}

func checkStatus(status, message string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrNoResults
	default:
		return fmt.Errorf("geocoding request failed with status %s: %s", status, message)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, path string, target any) error {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	metrics.GeocodingRequestsCounter.WithLabelValues(endpoint).Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	if err = json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("error decoding JSON response: %w", err)
	}
	return nil
}
