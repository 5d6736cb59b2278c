package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
)

func TestAssistantAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "how many projectors are free?", req["inputMessage"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "7 projectors are available."})
	}))
	defer srv.Close()

	c := NewAssistantClient(srv.URL, 5*time.Second, zap.NewNop())
	require.True(t, c.Enabled())

	reply, err := c.Ask(context.Background(), "how many projectors are free?")
	require.NoError(t, err)
	require.Equal(t, "7 projectors are available.", reply)
}

func TestAssistantUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewAssistantClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := c.Ask(context.Background(), "hello")
	require.Error(t, err)
}

func TestAssistantDisabledWithoutURL(t *testing.T) {
	c := NewAssistantClient("", 5*time.Second, zap.NewNop())
	require.False(t, c.Enabled())

	_, err := c.Ask(context.Background(), "hello")
	require.Error(t, err)

	_, err = c.Ask(context.Background(), "")
	require.True(t, domain.IsValidationError(err))
}
