// Package agent calls the remote hosted agents that back each pipeline step.
// Every agent shares one HTTP call shape and is distinguished only by its id.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nova-migration/migrate-go/internal/ratelimit"
)

// Config holds the connection settings shared by all agents.
type Config struct {
	Endpoint string
	APIKey   string
	UserID   string
}

// Client posts messages to the agent inference endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *ratelimit.AgentLimiter
	now        func() time.Time
}

// New creates a Client with a traced HTTP transport. Per-call deadlines come
// from the caller's context.
func New(cfg Config, limiter *ratelimit.AgentLimiter) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter:    limiter,
		now:        time.Now,
	}
}

// NewWithHTTPClient creates a Client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	AgentID    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API call failed: %d", e.StatusCode)
}

type request struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Call sends message to the agent and returns the decoded payload. Strings are
// sent verbatim, anything else is JSON-encoded first. Transport failures and
// non-2xx statuses are returned as errors; payload decoding never fails once
// a JSON envelope has been received.
func (c *Client) Call(ctx context.Context, agentID string, message any) (json.RawMessage, error) {
	msg, err := encodeMessage(message)
	if err != nil {
		return nil, fmt.Errorf("agent %s: encode message: %w", agentID, err)
	}

	body, err := json.Marshal(request{
		UserID:    c.cfg.UserID,
		AgentID:   agentID,
		SessionID: fmt.Sprintf("%s-%d", agentID, c.now().UnixMilli()),
		Message:   msg,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: encode request: %w", agentID, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, agentID); err != nil {
			return nil, fmt.Errorf("agent %s: %w", agentID, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent %s: build request: %w", agentID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent %s: request failed: %w", agentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{AgentID: agentID, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("agent %s: read response: %w", agentID, err)
	}

	payload, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, err)
	}
	return payload, nil
}

func encodeMessage(message any) (string, error) {
	if s, ok := message.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
