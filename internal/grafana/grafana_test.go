package grafana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmit_PostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/grafana", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Emit(context.Background(), Event{
		Level:   LevelInfo,
		Message: "R2 upload success",
		Meta: map[string]any{
			"videoTitle": "Ep12",
			"r2Url":      "https://videos.gr8r.com/uploads/1-Ep12.mp4",
		},
	})
	require.NoError(t, err)

	require.Equal(t, "info", got.Level)
	require.Equal(t, "R2 upload success", got.Message)
	require.Equal(t, "Ep12", got.Meta["videoTitle"])
}

func TestEmit_SinkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Emit(context.Background(), Event{Level: LevelError, Message: "boom"})
	require.Error(t, err)
}

func TestEmit_UnreachableSink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := New(srv.URL, 100*time.Millisecond)
	err := c.Emit(context.Background(), Event{Level: LevelInfo, Message: "unreachable"})
	require.Error(t, err)
}
