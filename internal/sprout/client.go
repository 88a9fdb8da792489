// Package sprout is the outbound HTTP client to the Sprout registrar
// collaborator: a single DELETE operation used to notify
// Sprout that a set of registrations should be torn down.
package sprout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client sends registration-termination notifications to Sprout.
// Connection pooling, DNS resolution, and retry are Sprout's own
// concern — this client treats anything but 200 as a single "notification
// failed" signal.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Sprout client against baseURL (e.g.
// "http://sprout.example.com:9888").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RegistrationPair is one (primary-impu, impi) entry in a
// PERMANENT_TERMINATION notification body.
type RegistrationPair struct {
	PrimaryIMPU string `json:"primary-impu"`
	IMPI        string `json:"impi,omitempty"`
}

// deleteRegistrationsBody is the JSON body of the /registrations DELETE
// request.
type deleteRegistrationsBody struct {
	Registrations []RegistrationPair `json:"registrations"`
}

// NotifyDeregistration sends the single HTTP DELETE the registration
// termination handler needs. sendNotifications
// controls the send-notifications query flag; pairs is either full
// (primary-impu, impi) tuples (PERMANENT_TERMINATION) or primary-impu-only
// entries (every other reason, IMPI left empty).
func (c *Client) NotifyDeregistration(ctx context.Context, sendNotifications bool, pairs []RegistrationPair) (int, error) {
	body, err := json.Marshal(deleteRegistrationsBody{Registrations: pairs})
	if err != nil {
		return 0, fmt.Errorf("sprout: encode registrations body: %w", err)
	}

	path := fmt.Sprintf("%s/registrations?send-notifications=%t", c.baseURL, sendNotifications)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("sprout: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sprout: request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
