package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "catgraph-gateway"
	maxErrorBody     = 64 << 10
)

var tracer = otel.Tracer("client")

// Client talks JSON over HTTP to the identity service. It holds no state
// besides the connection pool and never caches responses.
type Client struct {
	client    *http.Client
	userAgent string
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := http.Client{
		Timeout: timeout,
	}

	c := &Client{
		client:    &httpClient,
		userAgent: defaultUserAgent,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// StatusError is returned for any non-2xx answer. Message carries the
// service's own explanation when it sent one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Request sends body (if any) as JSON to baseURL+path and decodes the answer into response.
// token, when set, is sent as a bearer credential.
func (c *Client) Request(ctx context.Context, method, baseURL, path string, body any, token string, response any) error {
	ctx, span := tracer.Start(ctx, "Client.Request")
	defer span.End()

	url := strings.TrimRight(baseURL, "/") + path
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.url", url))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		span.RecordError(serr)
		slog.DebugContext(
			ctx, "identity service rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("module", "client"),
		)
		return serr
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body catgraph.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
