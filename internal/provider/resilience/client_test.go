package resilience_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/provider/resilience"
)

// fastConfig keeps backoff intervals negligible so tests don't sleep.
func fastConfig(name string, retries uint64) resilience.ClientConfig {
	return resilience.ClientConfig{
		Name:              name,
		Timeout:           time.Second,
		MaxRetries:        retries,
		RetryBaseInterval: time.Millisecond,
		RetryMaxInterval:  2 * time.Millisecond,
		BreakerTimeout:    time.Minute,
	}
}

func TestClient_Do_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("retry-test", 3))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), requests.Load(), "two failures then success")
}

func TestClient_Do_ClientErrorsAreNotRetried(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("client-error-test", 3))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(1), requests.Load())
}

func TestClient_Do_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("exhausted-test", 2))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode, "status handling stays with the caller")
	assert.Equal(t, int64(3), requests.Load(), "one try plus two retries")
}

func TestClient_Do_BreakerOpensAfterSustainedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// Five failed attempts at a 100% failure ratio trip the breaker.
	client := resilience.NewClient(fastConfig("breaker-test", 4))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err = client.Do(req)
	assert.ErrorIs(t, err, resilience.ErrUpstreamOpen)
}
