package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RigobertoCast/donde-jugar-chile/internal/domain"
)

const defaultTimeout = 10 * time.Second

// NominatimClient geocodes addresses against a Nominatim-compatible
// /search endpoint. Nominatim is best-effort and rate-limited; wrap the
// client with NewCached in production.
type NominatimClient struct {
	baseURL string
	// country is appended to every query ("La Florida" -> "La Florida, Chile")
	// to anchor ambiguous comuna names.
	country   string
	userAgent string
	client    *http.Client
}

func NewNominatim(baseURL, country string) *NominatimClient {
	return &NominatimClient{
		baseURL:   baseURL,
		country:   country,
		userAgent: "donde-jugar-chile",
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) (Point, error) {
	query := address
	if c.country != "" {
		query = address + ", " + c.country
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("%w: build request: %v", domain.ErrGeocodeFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("%w: status %d", domain.ErrGeocodeFailed, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, fmt.Errorf("%w: decode response: %v", domain.ErrGeocodeFailed, err)
	}
	if len(results) == 0 {
		return Point{}, domain.ErrGeocodeFailed
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad latitude %q", domain.ErrGeocodeFailed, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad longitude %q", domain.ErrGeocodeFailed, results[0].Lon)
	}

	return Point{Latitude: lat, Longitude: lon}, nil
}
