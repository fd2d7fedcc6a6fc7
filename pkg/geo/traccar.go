package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Device is a registered Traccar tracking unit.
type Device struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	UniqueID string `json:"uniqueId"`
	Status   string `json:"status"`
}

// Position is a Traccar device position report.
type Position struct {
	DeviceID  int       `json:"deviceId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Course    float64   `json:"course"`
	FixTime   time.Time `json:"fixTime"`
}

// TraccarClient talks to a customer's Traccar server over its REST
// API with basic auth.
type TraccarClient struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
}

func NewTraccarClient(baseURL, user, password string) *TraccarClient {
	return &TraccarClient{
		baseURL:  baseURL,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *TraccarClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.user, t.password)
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("traccar status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *TraccarClient) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := t.get(ctx, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (t *TraccarClient) Positions(ctx context.Context) ([]Position, error) {
	var positions []Position
	if err := t.get(ctx, "/api/positions", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}
