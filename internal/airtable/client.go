package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// KeyNormalizer transforms a title before it is used as the upsert key.
// The proxy matches titles as exact strings, so the normalizer chosen here
// decides which uploads collapse into one logical record.
type KeyNormalizer func(title string) string

// ExactKey preserves the title as-is. This is the historical behavior:
// case and whitespace differences produce distinct records.
func ExactKey(title string) string { return title }

// TrimFold trims surrounding whitespace and casefolds the title.
func TrimFold(title string) string { return strings.ToLower(strings.TrimSpace(title)) }

// UpstreamError carries the proxy's HTTP status and error message so callers
// can quote them back to the uploader.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("airtable proxy: status %d: %s", e.Status, e.Message)
}

// Client upserts video records through the Airtable proxy worker. The proxy
// finds a record by exact title match, creates one if absent, and otherwise
// overwrites only the named fields on the first match.
type Client struct {
	baseURL    string
	table      string
	normalize  KeyNormalizer
	httpClient *http.Client
}

func New(baseURL, table string, normalize KeyNormalizer, httpClient *http.Client) *Client {
	if normalize == nil {
		normalize = ExactKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		table:      table,
		normalize:  normalize,
		httpClient: httpClient,
	}
}

type upsertRequest struct {
	Table  string         `json:"table"`
	Title  string         `json:"title"`
	Fields map[string]any `json:"fields"`
}

type upsertResponse struct {
	Error string `json:"error"`
}

// Upsert synchronizes the record for title with the given fields. A non-2xx
// response or an error body yields an *UpstreamError.
func (c *Client) Upsert(ctx context.Context, title string, fields map[string]any) error {
	body, err := json.Marshal(upsertRequest{
		Table:  c.table,
		Title:  c.normalize(title),
		Fields: fields,
	})
	if err != nil {
		return fmt.Errorf("marshal upsert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/airtable/update", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call airtable proxy: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var parsed upsertResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode upsert response: %w", err)
		}
	}

	if resp.StatusCode >= 300 || parsed.Error != "" {
		msg := parsed.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	return nil
}
