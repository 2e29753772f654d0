package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_SendPostsToGateway(t *testing.T) {
	var received sendRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{
		Enabled:     true,
		GatewayURL:  server.URL,
		APIKey:      "secret",
		FromAddress: "no-reply@hopital.local",
		FromName:    "Hôpital",
	}, zap.NewNop())

	err := client.Send(context.Background(), Message{
		To:      "patient@example.com",
		ToName:  "Awa",
		Subject: "Rendez-vous confirmé",
		Body:    "Votre rendez-vous est enregistré.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", authHeader)
	assert.Equal(t, "no-reply@hopital.local", received.From.Email)
	require.Len(t, received.To, 1)
	assert.Equal(t, "patient@example.com", received.To[0].Email)
	assert.Equal(t, "Rendez-vous confirmé", received.Subject)
}

func TestClient_SendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"adresse invalide"}`))
	}))
	defer server.Close()

	client := NewClient(&Config{Enabled: true, GatewayURL: server.URL}, zap.NewNop())
	err := client.Send(context.Background(), Message{To: "x@example.com", Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adresse invalide")
}

func TestClient_SendDisabledDoesNotCallGateway(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(&Config{Enabled: false, GatewayURL: server.URL}, zap.NewNop())
	require.NoError(t, client.Send(context.Background(), Message{To: "x@example.com"}))
	assert.False(t, called)
}

func TestClient_SendRequiresRecipient(t *testing.T) {
	client := NewClient(&Config{}, zap.NewNop())
	assert.Error(t, client.Send(context.Background(), Message{Subject: "s"}))
}
