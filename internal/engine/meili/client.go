// Package meili is an HTTP client for the Meilisearch API.
package meili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/metrics"
)

// maxErrorBody caps how much of an unparseable error body is kept in the message.
const maxErrorBody = 512

// Client talks to one Meilisearch instance. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config configures the client.
type Config struct {
	// Host is the base URL, e.g. http://localhost:7700.
	Host    string
	APIKey  string
	Timeout time.Duration
	// MaxConnsPerHost limits the total number of connections. Zero means 100.
	MaxConnsPerHost int
	Logger          *zap.Logger
}

// New creates a client with its own connection pool.
func New(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:7700"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Host, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: cfg.Logger,
	}
}

// errorBody is the engine's error payload.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

func indexPath(index string, parts ...string) string {
	p := "/indexes/" + url.PathEscape(index)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) get(ctx context.Context, op, path string, result any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, op, path string, body, result any) error {
	return c.do(ctx, op, http.MethodPost, path, body, result)
}

// do executes a request and decodes a 2xx JSON body into result.
// Transport failures wrap domain.ErrRemoteUnavailable, error responses
// become *domain.RemoteError.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.EngineRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w: %w", op, domain.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.responseError(op, resp.StatusCode, data)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) responseError(op string, status int, data []byte) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		// gateway errors without an engine body mean the engine is not reachable
		if status == http.StatusBadGateway || status == http.StatusServiceUnavailable ||
			status == http.StatusGatewayTimeout {
			return fmt.Errorf("%s: HTTP %d: %w", op, status, domain.ErrRemoteUnavailable)
		}
		msg := string(data)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &domain.RemoteError{Op: op, Status: status, Message: msg}
	}
	c.logger.Debug("engine error response",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("code", eb.Code),
	)
	return &domain.RemoteError{Op: op, Status: status, Code: eb.Code, Type: eb.Type, Message: eb.Message}
}
