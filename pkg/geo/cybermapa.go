package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Vehicle is one live tracking record from the legacy Cybermapa feed.
type Vehicle struct {
	Plate      string    `json:"patente"`
	Latitude   float64   `json:"latitud"`
	Longitude  float64   `json:"longitud"`
	Speed      float64   `json:"velocidad"`
	Heading    float64   `json:"direccion"`
	ReportedAt time.Time `json:"fecha"`
}

// CybermapaClient queries the legacy vehicle tracking integration.
// Credentials come from the customer's integration config.
type CybermapaClient struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
}

func NewCybermapaClient(baseURL, user, password string) *CybermapaClient {
	return &CybermapaClient{
		baseURL:  baseURL,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Vehicles looks up live records for the given plates.
func (c *CybermapaClient) Vehicles(ctx context.Context, plates []string) ([]Vehicle, error) {
	q := url.Values{}
	q.Set("usuario", c.user)
	q.Set("clave", c.password)
	for _, p := range plates {
		q.Add("patente", p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/servicio/gps.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cybermapa status %d", resp.StatusCode)
	}

	var vehicles []Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}
