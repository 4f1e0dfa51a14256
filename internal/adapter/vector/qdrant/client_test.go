package qdrant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/adapter/vector/qdrant"
)

func TestClient_EnsureCollection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name: "collection exists",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/collections/jobs", r.URL.Path)
				assert.Equal(t, "test-api-key", r.Header.Get("api-key"))
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "collection created",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				assert.Equal(t, http.MethodPut, r.Method)
				var payload map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				vectors := payload["vectors"].(map[string]any)
				assert.EqualValues(t, 3, vectors["size"])
				assert.Equal(t, "Cosine", vectors["distance"])
				w.WriteHeader(http.StatusOK)
			},
		},
		{
			name: "create fails",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			err := qdrant.New(server.URL, "test-api-key").EnsureCollection(context.Background(), "jobs", 3, "Cosine")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestClient_UpsertPoints(t *testing.T) {
	t.Parallel()

	t.Run("writes points and waits", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/collections/jobs/points", r.URL.Path)
			assert.Equal(t, "true", r.URL.Query().Get("wait"))
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Len(t, payload["points"].([]any), 1)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := qdrant.New(server.URL, "").UpsertPoints(context.Background(), "jobs", []qdrant.Point{
			{ID: uuid.New().String(), Vector: []float32{0.1, 0.2}},
		})
		require.NoError(t, err)
	})

	t.Run("no points is a no-op", func(t *testing.T) {
		require.NoError(t, qdrant.New("http://127.0.0.1:0", "").UpsertPoints(context.Background(), "jobs", nil))
	})

	t.Run("missing collection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		err := qdrant.New(server.URL, "").UpsertPoints(context.Background(), "jobs", []qdrant.Point{{ID: 1, Vector: []float32{1}}})
		assert.ErrorIs(t, err, qdrant.ErrCollectionNotFound)
	})
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/jobs/points/search", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 2, body["limit"])
		assert.Equal(t, true, body["with_payload"])
		_, _ = w.Write([]byte(`{"result":[{"id":"a","score":0.9,"payload":{"job_id":"j1"}},{"id":"b","score":0.5,"payload":{"job_id":"j2"}}]}`))
	}))
	defer server.Close()

	hits, err := qdrant.New(server.URL, "").Search(context.Background(), "jobs", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0.9, hits[0].Score)
	assert.Equal(t, "j1", hits[0].Payload["job_id"])
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	require.NoError(t, qdrant.New(ok.URL, "").Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Error(t, qdrant.New(down.URL, "").Ping(context.Background()))
}
