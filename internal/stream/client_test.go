package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscription(t *testing.T) {
	var gotBody createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/subscriptions", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"subscriptionId": "sub-1"})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIBase: server.URL}, nil)
	require.NoError(t, err)

	subID, err := client.CreateSubscription(context.Background(), "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi", nil)
	require.NoError(t, err)
	require.Equal(t, "sub-1", subID)
	require.Equal(t, "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi", gotBody.Address)
	require.Equal(t, int64(-1), gotBody.StartBlock)
}

func TestCreateSubscriptionAcceptsIdKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "sub-2"})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIBase: server.URL}, nil)
	require.NoError(t, err)

	subID, err := client.CreateSubscription(context.Background(), "T-addr", nil)
	require.NoError(t, err)
	require.Equal(t, "sub-2", subID)
}

func TestCreateSubscriptionErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIBase: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.CreateSubscription(context.Background(), "T-addr", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")

	server.Close()
	_, err = client.CreateSubscription(context.Background(), "T-addr", nil)
	require.Error(t, err)
}

func TestDeleteSubscription(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIBase: server.URL}, nil)
	require.NoError(t, err)

	require.NoError(t, client.DeleteSubscription(context.Background(), "sub-1"))
	require.Equal(t, "/api/v1/subscriptions/sub-1", gotPath)
}

func TestStreamRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := []string{`{"BlockNumber":1}`, `{"BlockNumber":2}`}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/events/stream/sub-1", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		// keep the connection open until the client closes it
		conn.ReadMessage()
	}))
	defer server.Close()

	client, err := NewClient(Options{APIBase: server.URL}, nil)
	require.NoError(t, err)

	messages, err := client.Stream(context.Background(), "sub-1")
	require.NoError(t, err)

	for _, want := range frames {
		frame, err := messages.Next()
		require.NoError(t, err)
		require.JSONEq(t, want, string(frame))
	}
	require.NoError(t, messages.Close())

	_, err = messages.Next()
	require.Error(t, err)
}

func TestDeriveWSBase(t *testing.T) {
	derived, err := deriveWSBase("http://localhost:8080")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080", derived)

	derived, err = deriveWSBase("https://events.example.com")
	require.NoError(t, err)
	require.Equal(t, "wss://events.example.com", derived)

	_, err = deriveWSBase("ftp://nope")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unsupported scheme"))
}
