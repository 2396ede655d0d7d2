// Package provider contains one adapter per upstream event API. Each adapter
// translates the canonical search request into its provider's query dialect,
// calls the REST endpoint, and maps the proprietary payload into canonical
// events through a pure transform function.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"eventscout/pkg/models"
)

// Provider names, also used as ID prefixes and rate-limit bucket keys.
const (
	NameTicketmaster = "ticketmaster"
	NameEventbrite   = "eventbrite"
	NamePredictHQ    = "predicthq"
	NameRapidAPI     = "rapidapi"
)

// Provider is implemented by each adapter. Search never retries internally;
// retry and budget policy live in the aggregator layer.
type Provider interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, req models.SearchRequest) ([]models.Event, error)
}

// APIError is a non-2xx response from a provider, carrying the status code
// and a truncated response body for logging.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

const maxErrBody = 512

// readBody drains a response body, truncating error bodies for APIError.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func newAPIError(provider string, resp *http.Response, body []byte) *APIError {
	s := string(body)
	if len(s) > maxErrBody {
		s = s[:maxErrBody]
	}
	return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: s}
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// displayDate and displayTime turn a parsed start into the human-readable
// strings the UI renders directly.
func displayDate(t time.Time) string { return t.Format("Jan 2, 2006") }
func displayTime(t time.Time) string { return t.Format("3:04 PM") }

// displayPrice renders a structured min/max pair as a display string.
func displayPrice(min, max float64) string {
	if min == 0 && max == 0 {
		return "Free"
	}
	if max <= min || max == 0 {
		return fmt.Sprintf("$%.2f", min)
	}
	if min == 0 {
		return fmt.Sprintf("$%.2f", max)
	}
	return fmt.Sprintf("$%.2f - $%.2f", min, max)
}

// orDefault substitutes a placeholder for an empty provider field so the
// canonical event never carries nulls.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
