package geo

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Address is the structured result of a reverse geocode lookup.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	District   string `json:"district"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Formatted  string `json:"formatted"`
}

// Geocoder resolves coordinates to a structured address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
}

// CachedGeocoder memoizes lookups. Coordinates are bucketed to five
// decimals (~1m), enough to collapse retries of the same ping.
type CachedGeocoder struct {
	inner Geocoder
	cache *lru.Cache[string, *Address]
}

func NewCachedGeocoder(inner Geocoder, size int) (*CachedGeocoder, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, *Address](size)
	if err != nil {
		return nil, err
	}
	return &CachedGeocoder{inner: inner, cache: c}, nil
}

func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	key := fmt.Sprintf("%.5f,%.5f", lat, lng)
	if addr, ok := g.cache.Get(key); ok {
		return addr, nil
	}
	addr, err := g.inner.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	g.cache.Add(key, addr)
	return addr, nil
}
