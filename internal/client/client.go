// Package client talks JSON over HTTP to the playback service. No
// authentication, no pagination; callers decide what a failed read means
// (the polling layer falls back to its previous snapshot).
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unneeks/stewardagent/internal/model"
)

// DefaultTimeout bounds each individual request.
const DefaultTimeout = 10 * time.Second

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Code)
}

// Client is a thin JSON client for the playback service endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// BaseURL is the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Events returns the raw chronological event log (diagnostics feed).
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := c.getJSON(ctx, "/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Investigations returns the grouped investigation collection.
func (c *Client) Investigations(ctx context.Context) ([]model.Investigation, error) {
	var out []model.Investigation
	if err := c.getJSON(ctx, "/investigations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestState returns the term→status heatmap mapping, preserving the
// response's key order.
func (c *Client) LatestState(ctx context.Context) (model.LatestState, error) {
	var out model.LatestState
	if err := c.getJSON(ctx, "/latest_state", &out); err != nil {
		return model.LatestState{}, err
	}
	return out, nil
}

// LearningSummary returns the aggregated improvements sequence.
func (c *Client) LearningSummary(ctx context.Context) (model.LearningSummary, error) {
	var out model.LearningSummary
	if err := c.getJSON(ctx, "/learning_summary", &out); err != nil {
		return model.LearningSummary{}, err
	}
	return out, nil
}

// RemoteConfig returns the service configuration blob.
func (c *Client) RemoteConfig(ctx context.Context) (model.RemoteConfig, error) {
	var out model.RemoteConfig
	if err := c.getJSON(ctx, "/config", &out); err != nil {
		return model.RemoteConfig{}, err
	}
	return out, nil
}

// ApprovePR acknowledges a proposed fix. The call itself changes no local
// state; the next poll tick is expected to reflect it.
func (c *Client) ApprovePR(ctx context.Context, prID string) error {
	prID = strings.TrimSpace(prID)
	if prID == "" {
		return fmt.Errorf("pr id cannot be empty")
	}
	u := c.baseURL + "/approve_pr/" + url.PathEscape(prID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("build approve request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("approve pr %s: %w", prID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
