package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExtractor_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req extractRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "kapan ganti oli", req.Question)
		assert.Equal(t, "Keyword terkait: ganti oli. Ganti oli setiap 5000 km", req.Context)

		_ = json.NewEncoder(w).Encode(extractResponse{Answer: " setiap 5000 km \n"})
	}))
	defer srv.Close()

	ext := NewHTTPExtractor(srv.URL, srv.Client())
	answer, err := ext.Extract(context.Background(), "kapan ganti oli", "Keyword terkait: ganti oli. Ganti oli setiap 5000 km")
	require.NoError(t, err)
	assert.Equal(t, "setiap 5000 km", answer)
}

func TestHTTPExtractor_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPExtractor(srv.URL, nil).Extract(context.Background(), "q", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestHTTPExtractor_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPExtractor(srv.URL, nil).Extract(ctx, "q", "c")
	assert.Error(t, err)
}

func TestSpanOf(t *testing.T) {
	passage := "Keyword terkait: ganti oli. Ganti oli setiap 5000 km"

	tests := map[string]string{
		"setiap 5000 km":       "setiap 5000 km",
		" \"setiap 5000 km\" ": "setiap 5000 km",
		"**GANTI OLI**":        "ganti oli",
		"setiap 10000 km":      "",
		"":                     "",
	}
	for reply, want := range tests {
		assert.Equal(t, want, spanOf(reply, passage), reply)
	}
}
