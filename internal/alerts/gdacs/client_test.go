package gdacs_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast-app/skycast/internal/alerts/gdacs"
)

const eventList = `{"features":[
	{
		"geometry":{"coordinates":[121.0,14.6]},
		"properties":{
			"name":"Typhoon ABC-25",
			"eventtype":"TC",
			"alertlevel":"Red",
			"fromdate":"2025-06-09T00:00:00",
			"todate":"2025-06-12T00:00:00",
			"description":"Tropical cyclone over the Philippine Sea."
		}
	},
	{
		"geometry":{"coordinates":[-70.2,-33.4]},
		"properties":{"name":"Drought in Chile","eventtype":"DR","alertlevel":"Orange"}
	},
	{
		"geometry":{"coordinates":[]},
		"properties":{"name":"No geometry event"}
	}
]}`

func TestClient_ActiveAlerts_FiltersByProximity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/geteventlist/SEARCH", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, eventList)
	}))
	defer server.Close()

	client := gdacs.NewClient(gdacs.ClientConfig{BaseURL: server.URL})

	// Manila: the typhoon is nearby, Chile and the geometry-less event are not.
	got, err := client.ActiveAlerts(context.Background(), 14.5995, 120.9842)
	require.NoError(t, err)
	require.Len(t, got, 1)

	alert := got[0]
	assert.Equal(t, "GDACS", alert.SenderName)
	assert.Equal(t, "Typhoon ABC-25", alert.Event)
	assert.Equal(t, "Tropical cyclone over the Philippine Sea.", alert.Description)
	assert.Equal(t, []string{"red"}, alert.Tags)
	assert.Less(t, alert.Start, alert.End)
}

func TestClient_ActiveAlerts_NothingNearby(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, eventList)
	}))
	defer server.Close()

	client := gdacs.NewClient(gdacs.ClientConfig{BaseURL: server.URL})

	got, err := client.ActiveAlerts(context.Background(), 52.37, 4.89)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_ActiveAlerts_PropertyDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"features":[{"geometry":{"coordinates":[121.0,14.6]},"properties":{}}]}`)
	}))
	defer server.Close()

	client := gdacs.NewClient(gdacs.ClientConfig{BaseURL: server.URL})

	got, err := client.ActiveAlerts(context.Background(), 14.5995, 120.9842)
	require.NoError(t, err)
	require.Len(t, got, 1)

	alert := got[0]
	assert.Equal(t, "Weather Event", alert.Event)
	assert.Equal(t, "Global disaster alert", alert.Description)
	assert.Equal(t, []string{"moderate"}, alert.Tags)
	assert.NotZero(t, alert.Start, "start defaults to now")
	assert.Equal(t, alert.Start+86400, alert.End, "end defaults to a day later")
}

func TestClient_ActiveAlerts_FeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := gdacs.NewClient(gdacs.ClientConfig{BaseURL: server.URL})

	_, err := client.ActiveAlerts(context.Background(), 14.5995, 120.9842)
	require.Error(t, err)
}
