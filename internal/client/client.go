// Package client talks to a running neurograph server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lazypower/neurograph/internal/layout"
)

// EnvURL overrides the server address.
const EnvURL = "NEUROGRAPH_URL"

const httpTimeout = 5 * time.Second

// Client is a small JSON client for the /api endpoints.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. $NEUROGRAPH_URL wins when set.
func New(serverURL string) *Client {
	if u := os.Getenv(EnvURL); u != "" {
		serverURL = u
	}
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: strings.TrimRight(serverURL, "/"),
	}
}

// URL returns the base address requests go to.
func (c *Client) URL() string { return c.serverURL }

// RebuildResult reports what the server rebuilt the scene from.
type RebuildResult struct {
	Source string `json:"source"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// SetMode switches the live scene to the named preset.
func (c *Client) SetMode(ctx context.Context, mode string) (layout.ModeConfig, error) {
	var out layout.ModeConfig
	err := c.do(ctx, http.MethodPost, "/api/mode", map[string]string{"mode": mode}, &out)
	return out, err
}

// Rebuild asks the server to rebuild its scene from the store, or from the
// demo generator when demo is set.
func (c *Client) Rebuild(ctx context.Context, agentID string, demo bool) (RebuildResult, error) {
	body := map[string]any{"demo": demo}
	if agentID != "" {
		body["agent_id"] = agentID
	}
	var out RebuildResult
	err := c.do(ctx, http.MethodPost, "/api/rebuild", body, &out)
	return out, err
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil) == nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s", path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read response %s", path)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return errors.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return errors.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decode %s", path)
}
