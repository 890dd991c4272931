package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// HTTPDirectory resolves profiles against the clients and credits services
// over HTTP, shielded by a circuit breaker so a dead dependency fails fast.
type HTTPDirectory struct {
	clientsURL string
	creditsURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewHTTPDirectory builds a directory for the given service base URLs.
func NewHTTPDirectory(clientsURL, creditsURL string) *HTTPDirectory {
	return &HTTPDirectory{
		clientsURL: clientsURL,
		creditsURL: creditsURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "clients",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Profile fetches the client record by id.
func (d *HTTPDirectory) Profile(ctx context.Context, clientID string) (Profile, error) {
	result, err := d.breaker.Execute(func() (any, error) {
		return d.fetchProfile(ctx, clientID)
	})
	if err != nil {
		return Profile{}, translateErr(err)
	}
	return result.(Profile), nil
}

// HasCreditCard queries the credit service for the client's credit cards.
func (d *HTTPDirectory) HasCreditCard(ctx context.Context, clientID string) (bool, error) {
	result, err := d.breaker.Execute(func() (any, error) {
		return d.fetchCreditCards(ctx, clientID)
	})
	if err != nil {
		return false, translateErr(err)
	}
	return result.(bool), nil
}

func (d *HTTPDirectory) fetchProfile(ctx context.Context, clientID string) (Profile, error) {
	url := fmt.Sprintf("%s/clients/%s", d.clientsURL, clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, clientID)
	case resp.StatusCode != http.StatusOK:
		return Profile{}, fmt.Errorf("clients service returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode client profile: %w", err)
	}
	return profile, nil
}

func (d *HTTPDirectory) fetchCreditCards(ctx context.Context, clientID string) (bool, error) {
	url := fmt.Sprintf("%s/credit_cards/client/%s", d.creditsURL, clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("credits service returned %d", resp.StatusCode)
	}

	var cards []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		return false, fmt.Errorf("decode credit cards: %w", err)
	}
	return len(cards) > 0, nil
}

// translateErr maps breaker state errors onto the package taxonomy while
// passing domain errors through untouched.
func translateErr(err error) error {
	switch err {
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
