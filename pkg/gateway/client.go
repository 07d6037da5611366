// Package gateway provides a client for the console's HTTP/JSON gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/config"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
	"github.com/praveenpotnurii/BifrostLink/pkg/middleware"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/retry"
)

// DefaultTimeout is the maximum time to wait for a gateway response.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request id so gateway logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a non-2xx body is read.
const maxErrorBody = 4096

// Fallback messages used when a response carries no error field.
const (
	MsgQueryFailed      = "Query execution failed"
	MsgAgentUnreachable = "API unreachable"
)

// Client provides access to the gateway API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *retry.Config
	logger     *zap.Logger
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger = logger.Named("gateway")
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: middleware.RequestLogger(logger, RequestIDHeader)(http.DefaultTransport),
		},
		retry:  retry.DefaultConfig().WithMaxRetries(cfg.FetchRetries),
		logger: logger,
	}
}

// BaseURL returns the gateway root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AgentStatus asks the gateway whether any agent is connected.
func (c *Client) AgentStatus(ctx context.Context) (*models.AgentStatusReport, error) {
	var report models.AgentStatusReport
	req := request{
		op:       "check agent status",
		method:   http.MethodGet,
		segments: []string{"api", "agent-status"},
		fallback: MsgAgentUnreachable,
	}
	if err := c.doJSON(ctx, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ExecuteQuery runs one query against a registered database. A completed
// execution with a non-zero exit code is returned as a result, not an error;
// errors are reserved for transport and HTTP failures. Never retried.
func (c *Client) ExecuteQuery(ctx context.Context, query models.ExecuteQueryRequest) (*models.QueryResult, error) {
	var result models.QueryResult
	req := request{
		op:       "execute query",
		method:   http.MethodPost,
		segments: []string{"api", "execute-query"},
		body:     query,
		fallback: MsgQueryFailed,
	}

	c.logger.Debug("Executing query",
		zap.Int("database_id", query.DatabaseID),
		zap.String("query", logging.SanitizeQuery(query.Query)))

	if err := c.doJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// request describes one gateway call.
type request struct {
	op       string // human readable, e.g. "fetch users"
	method   string
	segments []string
	body     any
	fallback string // message used when a non-2xx body has no error field
}

// errorBody is the gateway's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// doJSON executes req and decodes a 2xx body into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, req request, out any) error {
	endpoint, err := buildURL(c.baseURL, req.segments...)
	if err != nil {
		return &apperrors.TransportError{Op: req.op, Err: fmt.Errorf("failed to build URL: %w", err), Permanent: true}
	}

	var reader io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return &apperrors.TransportError{Op: req.op, Err: fmt.Errorf("failed to encode request: %w", err), Permanent: true}
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, reader)
	if err != nil {
		return &apperrors.TransportError{Op: req.op, Err: fmt.Errorf("failed to create request: %w", err), Permanent: true}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Gateway request failed",
			zap.String("op", req.op),
			zap.String("request_id", requestID),
			zap.String("error", logging.SanitizeError(err)))
		return &apperrors.TransportError{Op: req.op, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serverErr := decodeServerError(req, resp.StatusCode, payload)
		c.logger.Warn("Gateway returned error",
			zap.String("op", req.op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", serverErr.Message))
		return serverErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.TransportError{Op: req.op, Err: fmt.Errorf("failed to parse response: %w", err), Permanent: true}
	}
	return nil
}

// decodeServerError prefers the body's error field. Plain-text bodies (the
// gateway uses http.Error for some rejections) fall back to the generic
// message for the operation.
func decodeServerError(req request, status int, payload []byte) *apperrors.ServerError {
	message := req.fallback
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		message = strings.TrimSpace(body.Error)
	}
	return &apperrors.ServerError{Op: req.op, Status: status, Message: message}
}

// unwrapURLError drops the "Get \"http://...\":" prefix net/http adds, so the
// operator sees only the cause.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}

	return u.String(), nil
}
