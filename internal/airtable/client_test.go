package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpsert_SendsProxyPayload(t *testing.T) {
	var got upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/airtable/update", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "Video posts", nil, srv.Client())
	err := c.Upsert(context.Background(), "Ep12", map[string]any{
		"R2 URL":     "https://videos.gr8r.com/uploads/1-Ep12.mp4",
		"Video Type": "short",
	})
	require.NoError(t, err)

	require.Equal(t, "Video posts", got.Table)
	require.Equal(t, "Ep12", got.Title)
	require.Equal(t, "https://videos.gr8r.com/uploads/1-Ep12.mp4", got.Fields["R2 URL"])
	require.Equal(t, "short", got.Fields["Video Type"])
}

func TestUpsert_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"INVALID_VALUE_FOR_COLUMN"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "Video posts", nil, srv.Client())
	err := c.Upsert(context.Background(), "Ep12", map[string]any{})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	require.Equal(t, "INVALID_VALUE_FOR_COLUMN", upstream.Message)
}

func TestUpsert_ErrorBodyWithOKStatus(t *testing.T) {
	// The proxy sometimes reports failures in the body alone.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"record locked"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "Video posts", nil, srv.Client())
	err := c.Upsert(context.Background(), "Ep12", map[string]any{})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, "record locked", upstream.Message)
}

func TestUpsert_UnparseableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "Video posts", nil, srv.Client())
	err := c.Upsert(context.Background(), "Ep12", map[string]any{})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusBadGateway, upstream.Status)
	require.Equal(t, "unknown error", upstream.Message)
}

func TestUpsert_AppliesKeyNormalizer(t *testing.T) {
	var got upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "Video posts", TrimFold, srv.Client())
	require.NoError(t, c.Upsert(context.Background(), "  Ep12 ", nil))
	require.Equal(t, "ep12", got.Title)
}

func TestKeyNormalizers(t *testing.T) {
	require.Equal(t, " Ep12 ", ExactKey(" Ep12 "))
	require.Equal(t, "ep12", TrimFold(" Ep12 "))
}
