package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Embed(t *testing.T) {
	var captured struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{
					"object":    "embedding",
					"index":     0,
					"embedding": []float64{0.25, -0.5, 1.0},
				},
			},
			"model": "test-embedding-model",
		})
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-embedding-model")
	vector, err := client.Embed(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -0.5, 1.0}, vector)
	assert.Equal(t, []string{"alice"}, captured.Input)
	assert.Equal(t, "test-embedding-model", captured.Model)
}

func TestClient_Embed_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   []map[string]interface{}{},
			"model":  "test-embedding-model",
		})
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-embedding-model")
	_, err := client.Embed(context.Background(), "alice")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding data")
}

func TestClient_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-embedding-model")
	_, err := client.Embed(context.Background(), "alice")

	assert.Error(t, err)
}
