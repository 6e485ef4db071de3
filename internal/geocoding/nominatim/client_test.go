package nominatim_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/geocoding"
	"github.com/skycast-app/skycast/internal/geocoding/nominatim"
)

// newClient builds a client against the test server with a generous rate
// limit so multi-call tests don't sleep.
func newClient(serverURL string) *nominatim.Client {
	return nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:           serverURL,
		UserAgent:         "SkycastTest/1.0",
		RequestsPerSecond: 1000,
	})
}

func TestClient_SearchCities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Amsterdam", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "SkycastTest/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"lat":"52.3676","lon":"4.9041",
			"display_name":"Amsterdam, North Holland, Netherlands",
			"address":{"city":"Amsterdam","state":"North Holland","country":"Netherlands"}
		}]`)
	}))
	defer server.Close()

	got, err := newClient(server.URL).SearchCities(context.Background(), "Amsterdam")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Amsterdam", got[0].Name)
	assert.Equal(t, "Netherlands", got[0].Country)
	assert.Equal(t, "North Holland", got[0].State)
	assert.Equal(t, 52.3676, got[0].Lat)
	assert.Equal(t, 4.9041, got[0].Lon)
}

func TestClient_SearchCities_NameFallbackChain(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name: "town when city missing",
			body: `[{"lat":"39.8","lon":"-89.6","display_name":"Springfield, Illinois",
				"address":{"town":"Springfield","country":"United States"}}]`,
			expected: "Springfield",
		},
		{
			name: "village when city and town missing",
			body: `[{"lat":"51.0","lon":"4.0","display_name":"Eksaarde, Belgium",
				"address":{"village":"Eksaarde","country":"Belgium"}}]`,
			expected: "Eksaarde",
		},
		{
			name: "generic name when address fields missing",
			body: `[{"lat":"27.98","lon":"86.92","name":"Everest Base Camp",
				"display_name":"Everest Base Camp, Nepal","address":{"country":"Nepal"}}]`,
			expected: "Everest Base Camp",
		},
		{
			name: "first display segment as last resort",
			body: `[{"lat":"48.85","lon":"2.35",
				"display_name":"Quai aux Fleurs, Paris, France","address":{"country":"France"}}]`,
			expected: "Quai aux Fleurs",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			got, err := newClient(server.URL).SearchCities(context.Background(), "query")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tc.expected, got[0].Name)
		})
	}
}

func TestClient_SearchCities_NonArrayBodyIsZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error":"unsupported query"}`)
	}))
	defer server.Close()

	got, err := newClient(server.URL).SearchCities(context.Background(), "???")
	require.NoError(t, err, "a malformed body is zero results, not an error")
	assert.Empty(t, got)
}

func TestClient_SearchCities_HTTPErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newClient(server.URL).SearchCities(context.Background(), "Amsterdam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestClient_Reverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"address":{"city":"Amsterdam","country":"Netherlands"}}`)
	}))
	defer server.Close()

	place := newClient(server.URL).Reverse(context.Background(), 52.3676, 4.9041)
	assert.Equal(t, geocoding.Place{City: "Amsterdam", Country: "Netherlands"}, place)
}

func TestClient_Reverse_MunicipalityFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"address":{"municipality":"Haarlemmermeer","country":"Netherlands"}}`)
	}))
	defer server.Close()

	place := newClient(server.URL).Reverse(context.Background(), 52.3, 4.7)
	assert.Equal(t, "Haarlemmermeer", place.City)
}

func TestClient_Reverse_NeverFails(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `not json`)
			},
		},
		{
			name: "no usable address fields",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"address":{"country":"Netherlands"}}`)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			place := newClient(server.URL).Reverse(context.Background(), 52.3, 4.7)
			assert.Equal(t, geocoding.UnknownPlace, place)
		})
	}
}
