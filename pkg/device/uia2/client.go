// Package uia2 drives a device through the UIAutomator2 server's HTTP
// API and exposes it as a replay transport.
package uia2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/logger"
)

// Client communicates with a UIAutomator2 server.
type Client struct {
	http      *http.Client
	baseURL   string
	sessionID string
	serial    string
}

// response is the standard UIAutomator2 response envelope.
type response struct {
	SessionID string      `json:"sessionId"`
	Value     interface{} `json:"value"`
}

// Capabilities for session creation.
type Capabilities struct {
	PlatformName string `json:"platformName,omitempty"`
	DeviceName   string `json:"deviceName,omitempty"`
}

// New creates a client talking TCP to the given host:port.
func New(addr string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: fmt.Sprintf("http://%s", addr),
		serial:  addr,
	}
}

// NewUnix creates a client over a Unix socket, for forwarded servers.
func NewUnix(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{
		http:    &http.Client{Transport: transport, Timeout: 30 * time.Second},
		baseURL: "http://localhost",
		serial:  socketPath,
	}
}

// SessionID returns the current session ID.
func (c *Client) SessionID() string { return c.sessionID }

// request makes an HTTP request and returns the raw response body.
func (c *Client) request(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	start := time.Now()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, core.ErrTransport.WithMessage("marshal request for %s", path).WithCause(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, core.ErrTransport.WithMessage("create request for %s", path).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("uia2: %s %s [%v] error: %v", method, path, elapsed, err)
		return nil, core.ErrDeviceUnreachable.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrTransport.WithMessage("read response of %s", path).WithCause(err)
	}

	logger.Debug("uia2: %s %s [%v] %d", method, path, elapsed, resp.StatusCode)

	if resp.StatusCode >= 400 {
		var errResp response
		if json.Unmarshal(respBody, &errResp) == nil {
			if errVal, ok := errResp.Value.(map[string]interface{}); ok {
				errMsg, _ := errVal["message"].(string)
				errType, _ := errVal["error"].(string)
				return nil, core.ErrTransport.WithMessage("%s: %s", errType, errMsg)
			}
		}
		return nil, core.ErrTransport.WithMessage("server error %d on %s", resp.StatusCode, path)
	}

	return respBody, nil
}

// sessionPath prefixes path with the session segment.
func (c *Client) sessionPath(path string) string {
	return fmt.Sprintf("/session/%s%s", c.sessionID, path)
}

// Status checks whether the server is ready.
func (c *Client) Status(ctx context.Context) (bool, error) {
	data, err := c.request(ctx, "GET", "/status", nil)
	if err != nil {
		return false, err
	}
	var resp struct {
		Value struct {
			Ready bool `json:"ready"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, core.ErrTransport.WithMessage("parse status response").WithCause(err)
	}
	return resp.Value.Ready, nil
}

// CreateSession starts an automation session.
func (c *Client) CreateSession(ctx context.Context, caps Capabilities) error {
	data, err := c.request(ctx, "POST", "/session", map[string]interface{}{
		"capabilities": caps,
	})
	if err != nil {
		return err
	}

	var resp struct {
		SessionID string `json:"sessionId"`
		Value     struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return core.ErrTransport.WithMessage("parse session response").WithCause(err)
	}
	id := resp.SessionID
	if id == "" {
		id = resp.Value.SessionID
	}
	if id == "" {
		return core.ErrTransport.WithMessage("no session id in response")
	}
	c.sessionID = id
	return nil
}

// Close ends the session.
func (c *Client) Close(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.request(ctx, "DELETE", c.sessionPath(""), nil)
	c.sessionID = ""
	return err
}
