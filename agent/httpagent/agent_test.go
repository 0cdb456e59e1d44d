package httpagent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icgateway/gateway"
)

func TestQueryRoundTripsWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/canister/svc/query/http_request", r.URL.Path)
		var env callEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		require.Equal(t, "GET", env.Method)
		require.Equal(t, "/", env.URL)

		resp := replyEnvelope{
			StatusCode: 200,
			Headers:    [][2]string{{"Content-Type", "text/html"}},
			Body:       []byte("hi"),
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	agent := &Agent{BaseURL: srv.URL, HTTPClient: srv.Client()}
	resp, err := agent.Query(context.Background(), "svc", "http_request", gateway.HttpRequest{Method: "GET", URL: "/"}, 2)
	require.NoError(t, err)
	require.Equal(t, uint16(200), resp.StatusCode)
	require.Equal(t, "hi", string(resp.Body))
}

func TestQueryMapsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	agent := &Agent{BaseURL: srv.URL, HTTPClient: srv.Client()}
	_, err := agent.Query(context.Background(), "svc", "http_request", gateway.HttpRequest{Method: "GET", URL: "/"}, 2)
	require.Error(t, err)
	ae, ok := err.(gateway.AgentError)
	require.True(t, ok)
	require.Equal(t, gateway.AgentHTTPTransport, ae.Kind)
}
