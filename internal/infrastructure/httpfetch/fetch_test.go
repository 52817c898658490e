package httpfetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talivision/where-am-i-listening/internal/infrastructure/httpfetch"
)

func TestFetcher_Do(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "success on first attempt",
			statuses:   []int{http.StatusOK},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "non-transient error returns immediately",
			statuses:   []int{http.StatusNotFound},
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
		{
			name:       "retries 503 then succeeds",
			statuses:   []int{http.StatusServiceUnavailable, http.StatusOK},
			wantStatus: http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "retries 429 to exhaustion",
			statuses:   []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests},
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				i := atomic.AddInt32(&calls, 1) - 1
				status := tt.statuses[len(tt.statuses)-1]
				if int(i) < len(tt.statuses) {
					status = tt.statuses[i]
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			f := httpfetch.New(server.Client())
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
			require.NoError(t, err)

			resp, err := f.Do(context.Background(), req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestFetcher_Do_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := httpfetch.New(server.Client())
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	// First attempt still fires since cancellation is only checked between
	// retries, but the subsequent wait observes the canceled context.
	_, err = f.Do(ctx, req)
	assert.Error(t, err)
}
