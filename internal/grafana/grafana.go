package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Log levels accepted by the sink.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Event is one structured log line destined for the telemetry sink.
type Event struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

// Client ships events to the Grafana logging endpoint. Emission is bounded by
// the client timeout; callers decide whether a delivery failure matters (the
// upload pipeline swallows it).
type Client struct {
	url        string
	httpClient *http.Client
}

func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:        strings.TrimRight(url, "/") + "/api/grafana",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Emit posts a single event. The sink's response body is discarded; only the
// status code decides success.
func (c *Client) Emit(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build log request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call logging endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("logging endpoint: unexpected status %d", resp.StatusCode)
	}

	return nil
}
