package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultMapsBaseURL = "https://maps.googleapis.com"

// GoogleGeocoder resolves coordinates through the Google geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGoogleGeocoder(apiKey, baseURL string) *GoogleGeocoder {
	if baseURL == "" {
		baseURL = defaultMapsBaseURL
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type googleComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleResult struct {
	AddressComponents []googleComponent `json:"address_components"`
	FormattedAddress  string            `json:"formatted_address"`
}

type googleResponse struct {
	Status  string         `json:"status"`
	Results []googleResult `json:"results"`
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/maps/api/geocode/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, fmt.Errorf("geocode status %s", body.Status)
	}

	best := body.Results[0]
	addr := &Address{Formatted: best.FormattedAddress}
	for _, comp := range best.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "route":
				addr.Street = comp.LongName
			case "street_number":
				addr.Number = comp.LongName
			case "locality":
				addr.City = comp.LongName
			case "sublocality", "sublocality_level_1", "neighborhood":
				if addr.District == "" {
					addr.District = comp.LongName
				}
			case "administrative_area_level_1":
				addr.State = comp.LongName
			case "country":
				addr.Country = comp.LongName
			case "postal_code":
				addr.PostalCode = comp.LongName
			}
		}
	}
	return addr, nil
}
