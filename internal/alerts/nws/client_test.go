package nws_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/alerts/nws"
)

func TestClient_ActiveAlerts(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/points/40.7128,-74.0060":
			fmt.Fprintf(w, `{"properties":{"county":"%s/zones/county/NYC061"}}`, server.URL)
		case "/zones/county/NYC061/alerts/active":
			fmt.Fprint(w, `{"features":[{"properties":{
				"senderName":"NWS New York NY",
				"event":"Flood Warning",
				"onset":"2025-06-10T14:00:00-04:00",
				"ends":"2025-06-10T20:00:00-04:00",
				"description":"Flooding of small streams expected.",
				"severity":"Severe"
			}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := nws.NewClient(nws.ClientConfig{BaseURL: server.URL})

	got, err := client.ActiveAlerts(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)
	require.Len(t, got, 1)

	alert := got[0]
	assert.Equal(t, "NWS New York NY", alert.SenderName)
	assert.Equal(t, "Flood Warning", alert.Event)
	assert.Equal(t, "Flooding of small streams expected.", alert.Description)
	assert.Equal(t, []string{"severe"}, alert.Tags)
	assert.Greater(t, alert.End, alert.Start)
}

func TestClient_ActiveAlerts_PropertyFallbacks(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/alerts/active" {
			// No senderName/event/onset/ends/description/severity.
			fmt.Fprint(w, `{"features":[{"properties":{
				"effective":"2025-06-10T14:00:00Z",
				"expires":"2025-06-10T20:00:00Z",
				"headline":"Dense Fog through Tuesday morning"
			}}]}`)
			return
		}
		fmt.Fprintf(w, `{"properties":{"county":"%s"}}`, server.URL)
	}))
	defer server.Close()

	client := nws.NewClient(nws.ClientConfig{BaseURL: server.URL})

	got, err := client.ActiveAlerts(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)
	require.Len(t, got, 1)

	alert := got[0]
	assert.Equal(t, "NWS", alert.SenderName)
	assert.Equal(t, "Weather Alert", alert.Event)
	assert.Equal(t, "Dense Fog through Tuesday morning", alert.Description, "headline used when description missing")
	assert.Equal(t, []string{"minor"}, alert.Tags)
	assert.NotZero(t, alert.Start, "effective used when onset missing")
	assert.NotZero(t, alert.End, "expires used when ends missing")
}

func TestClient_ActiveAlerts_NoCountyYieldsEmpty(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"properties":{}}`)
	}))
	defer server.Close()

	client := nws.NewClient(nws.ClientConfig{BaseURL: server.URL})

	got, err := client.ActiveAlerts(context.Background(), 61.2181, -149.9003)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, requests, "no alerts request without a county")
}

func TestClient_ActiveAlerts_PointLookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := nws.NewClient(nws.ClientConfig{BaseURL: server.URL})

	_, err := client.ActiveAlerts(context.Background(), 40.7128, -74.0060)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}
