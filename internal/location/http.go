package location

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
)

// HTTP asks a geolocation endpoint for the host's approximate position.
// The endpoint must answer GET with {"latitude": .., "longitude": ..}.
// 401 and 403 responses count as a permission denial.
type HTTP struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTP(endpoint string) *HTTP {
	return &HTTP{Endpoint: endpoint, Client: http.DefaultClient}
}

func (h *HTTP) Resolve(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint, nil)
	if err != nil {
		return Position{}, errors.Wrap(err, "build geolocation request")
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Position{}, errors.Wrap(err, "geolocation request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Position{}, errors.Wrapf(ErrDenied, "geolocation endpoint returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Position{}, errors.Newf("geolocation endpoint returned %d", resp.StatusCode)
	}

	var pos Position
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		return Position{}, errors.Wrap(err, "decode geolocation response")
	}
	return pos, nil
}
