package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"campaigner/pkg/channel/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) types.Client {
	return NewClient(types.ClientConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestSendText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sendText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "+4915551234", payload["phone"])
		assert.Equal(t, "Hi Ada!", payload["text"])

		json.NewEncoder(w).Encode(types.SendResponse{ExternalID: "ext-1", Status: "sent"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	externalID, err := client.SendText(context.Background(), "+4915551234", "Hi Ada!")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", externalID)
}

func TestSendTextServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(types.SendResponse{Error: "upstream unavailable"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendText(context.Background(), "+4915551234", "Hi!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestSendTextMissingExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.SendResponse{Status: "sent"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendText(context.Background(), "+4915551234", "Hi!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing externalId")
}

func TestSendTextConnectionRefused(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.SendText(context.Background(), "+4915551234", "Hi!")
	assert.Error(t, err)
}

func TestSendImage(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake-png-bytes"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sendImage", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "+4915551234", r.FormValue("phone"))
		assert.Equal(t, "Look at this", r.FormValue("caption"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)

		json.NewEncoder(w).Encode(types.SendResponse{ExternalID: "ext-2", Status: "sent"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	externalID, err := client.SendImage(context.Background(), "+4915551234", imagePath, "Look at this")
	require.NoError(t, err)
	assert.Equal(t, "ext-2", externalID)
}

func TestSendImageMissingFile(t *testing.T) {
	client := newTestClient("http://localhost:0")
	_, err := client.SendImage(context.Background(), "+4915551234", "/nonexistent/photo.png", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image file")
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.Error(t, client.HealthCheck(context.Background()))
}
