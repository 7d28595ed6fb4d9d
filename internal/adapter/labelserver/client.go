package labelserver

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

	"github.com/google/uuid"
	"github.com/mmcdole/labeldesk/internal/domain"
)

const (
	defaultTimeout = 120 * time.Second
	userAgent      = "labeldesk/1.0"

	// DefaultLabelsPath is the label endpoint of the web app
	DefaultLabelsPath = "/get_cdek_labels"
	// DefaultOrdersPath serves the order queue as JSON
	DefaultOrdersPath = "/api/orders"

	sessionCookieName = "session"
	maxBodyBytes      = 256 << 20
)

// Options configures a Client
type Options struct {
	BaseURL       string
	LabelsPath    string
	OrdersPath    string
	CSRFToken     string
	SessionCookie string
	Timeout       time.Duration
}

// Client talks to the label server.
// It implements domain.LabelClient and domain.OrderSource.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new label server client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.LabelsPath == "" {
		opts.LabelsPath = DefaultLabelsPath
	}
	if opts.OrdersPath == "" {
		opts.OrdersPath = DefaultOrdersPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

var (
	_ domain.LabelClient = (*Client)(nil)
	_ domain.OrderSource = (*Client)(nil)
)

// Name implements domain.OrderSource
func (c *Client) Name() string {
	return c.opts.BaseURL
}

// newRequest builds an authenticated request
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.opts.CSRFToken != "" {
		req.Header.Set("X-CSRFToken", c.opts.CSRFToken)
	}
	if c.opts.SessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.opts.SessionCookie})
	}
	return req, nil
}

// do executes req and reads the whole body
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	c.logger.Debug("label server request", "method", req.Method, "url", req.URL.String(), "request_id", req.Header.Get("X-Request-ID"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("label server request failed", "error", err)
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, body, nil
}

type labelRequest struct {
	TrackingNumbers []string `json:"ozon_tracking_numbers"`
}

// RequestLabels posts the tracking numbers and returns the raw answer.
// Non-2xx statuses are not errors here; the caller inspects the response.
func (c *Client) RequestLabels(ctx context.Context, trackingNumbers []string) (*domain.LabelResponse, error) {
	payload, err := json.Marshal(labelRequest{TrackingNumbers: trackingNumbers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.opts.LabelsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Info("label server answered", "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"), "bytes", len(body))
	return &domain.LabelResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

type ordersResponse struct {
	Postings []domain.Order `json:"postings"`
	Error    string         `json:"error"`
}

// FetchOrders returns the order queue of the active shop
func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.opts.OrdersPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrAuthFailed
	}

	var parsed ordersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			c.logger.Error("orders request error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse orders: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &domain.RequestError{Status: resp.StatusCode, Message: msg}
	}
	if parsed.Error != "" {
		// The server reports soft problems (e.g. an empty queue) next to the data
		c.logger.Warn("orders returned with warning", "warning", parsed.Error)
	}
	return parsed.Postings, nil
}
