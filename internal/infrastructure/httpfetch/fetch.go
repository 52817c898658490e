// Package httpfetch provides a single-shot HTTP request with bounded retries
// on transient upstream statuses, shared by the Wikidata, Wikipedia,
// Nominatim, and Photon clients in this module.
package httpfetch

import (
	"context"
	"net/http"
	"time"
)

// maxRetries is the number of additional attempts after the first, matching
// the "retried up to 2 times" contract for transient upstream errors.
const maxRetries = 2

// retryBaseDelay is the unit of the linear backoff: the nth retry waits
// n * retryBaseDelay.
const retryBaseDelay = 500 * time.Millisecond

// Fetcher issues HTTP requests with bounded retries. The zero value is ready
// to use with http.DefaultClient.
type Fetcher struct {
	HTTPClient *http.Client
}

// New creates a Fetcher around the given client. A nil client falls back to
// http.DefaultClient.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{HTTPClient: client}
}

// Do issues req, retrying up to maxRetries times with linear backoff when the
// response status is 429 or 503. Any other non-success status is returned
// unmodified for the caller to interpret. A non-nil error is definitive and
// is never retried. On retry exhaustion, the last response is returned.
//
// The caller owns closing the returned response body.
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	var resp *http.Response

	for attempt := 0; attempt <= maxRetries; attempt++ {
		r, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if r.StatusCode != http.StatusTooManyRequests && r.StatusCode != http.StatusServiceUnavailable {
			return r, nil
		}

		resp = r

		if attempt == maxRetries {
			break
		}

		_ = resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBaseDelay * time.Duration(attempt+1)):
		}
	}

	return resp, nil
}
