package revai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Result carries the dispatcher's upstream status and raw body for diagnostic
// logging, independent of whether the submission was accepted.
type Result struct {
	Status int
	Body   string
}

// Client submits transcription jobs for already-stored media. The callback
// address is fixed at construction; the job service posts transcripts back to
// it asynchronously.
type Client struct {
	url         string
	callbackURL string
	httpClient  *http.Client
}

func New(url, callbackURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:         url,
		callbackURL: callbackURL,
		httpClient:  httpClient,
	}
}

type submitRequest struct {
	MediaURL    string `json:"media_url"`
	Metadata    string `json:"metadata"`
	CallbackURL string `json:"callback_url"`
}

// Submit requests transcription of the media at mediaURL, labelled with label
// so the callback can be correlated. A non-2xx upstream status is reported as
// an error alongside the Result.
func (c *Client) Submit(ctx context.Context, mediaURL, label string) (Result, error) {
	body, err := json.Marshal(submitRequest{
		MediaURL:    mediaURL,
		Metadata:    label,
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call transcription service: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	result := Result{Status: resp.StatusCode, Body: string(raw)}

	if resp.StatusCode >= 300 {
		return result, fmt.Errorf("transcription service: unexpected status %d", resp.StatusCode)
	}

	return result, nil
}
