package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Location is the optional result of a lookup. A failed or disabled lookup
// yields (Location{}, false), never an error: geo data is nice to have and
// must not block ingestion.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

type apiResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// HTTPResolver resolves locations against an ip-api style JSON endpoint
// (GET {baseURL}/{ip} -> {"status":"success","country":...,"city":...}).
// An empty base URL disables lookups entirely.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

// Lookup resolves ip to a location. Timeouts, transport errors, non-200
// responses and "fail" payloads all read as a missing location.
func (r *HTTPResolver) Lookup(ctx context.Context, ip string) (Location, bool) {
	if r.baseURL == "" || ip == "" {
		return Location{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ip), nil)
	if err != nil {
		return Location{}, false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, false
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, false
	}

	if body.Status != "success" || body.Country == "" {
		return Location{}, false
	}

	return Location{Country: body.Country, City: body.City}, true
}
