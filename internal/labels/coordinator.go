package labels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mmcdole/labeldesk/internal/domain"
)

// OutcomeKind identifies how a successful label request was answered
type OutcomeKind int

const (
	OutcomePDF     OutcomeKind = iota // Single PDF saved
	OutcomeZIP                        // ZIP archive of PDFs saved
	OutcomeMessage                    // Server confirmed with a JSON message
)

// Outcome is the result of a successful label request
type Outcome struct {
	Kind      OutcomeKind
	Message   string             // User-facing summary
	Path      string             // Saved file, empty for OutcomeMessage
	Requested domain.TrackingSet // Requested set after marking
}

// Coordinator sends label requests and applies their results.
// Only one request runs at a time.
type Coordinator struct {
	client   domain.LabelClient
	registry *Registry
	saver    Saver
	logger   *slog.Logger
	now      func() time.Time

	inFlight atomic.Bool
}

// NewCoordinator creates a coordinator
func NewCoordinator(client domain.LabelClient, registry *Registry, saver Saver, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		client:   client,
		registry: registry,
		saver:    saver,
		logger:   logger,
		now:      time.Now,
	}
}

// Busy reports whether a request is in flight
func (c *Coordinator) Busy() bool {
	return c.inFlight.Load()
}

// jsonReply is the structured payload of the label endpoint
type jsonReply struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Errors  []struct {
		Chunk string `json:"ozon_track_chunk"`
		Error string `json:"error"`
	} `json:"errors"`
}

func (r jsonReply) details() []string {
	var out []string
	for _, e := range r.Errors {
		if e.Error == "" {
			continue
		}
		if e.Chunk != "" {
			out = append(out, e.Chunk+": "+e.Error)
		} else {
			out = append(out, e.Error)
		}
	}
	return out
}

// Request asks the server for labels of the given tracking numbers.
// It makes a single attempt. When a file was saved but marking failed, the
// returned Outcome still carries Path next to the error. Numbers are marked as requested only when the
// server delivered a file or confirmed with a message.
func (c *Coordinator) Request(ctx context.Context, numbers []string) (Outcome, error) {
	if len(numbers) == 0 {
		return Outcome{}, domain.ErrNoSelection
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, domain.ErrRequestInFlight
	}
	defer c.inFlight.Store(false)

	c.logger.Info("requesting labels", "count", len(numbers))

	resp, err := c.client.RequestLabels(ctx, numbers)
	if err != nil {
		c.logger.Error("label request failed", "error", err)
		return Outcome{}, err
	}

	if !resp.OK() {
		return Outcome{}, c.rejected(resp)
	}

	ct := strings.ToLower(resp.ContentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		name := fmt.Sprintf("cdek_labels_%d_orders.pdf", len(numbers))
		return c.saveAndMark(OutcomePDF, name, resp.Body, numbers, "Labels received, PDF saved")

	case strings.Contains(ct, "application/zip"):
		name := fmt.Sprintf("cdek_labels_batch_%d.zip", c.now().UnixMilli())
		return c.saveAndMark(OutcomeZIP, name, resp.Body, numbers, "Labels received, ZIP archive saved")

	case strings.Contains(ct, "application/json"):
		var reply jsonReply
		if err := json.Unmarshal(resp.Body, &reply); err != nil {
			c.logger.Error("failed to parse label reply", "error", err)
			return Outcome{}, fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
		}
		switch {
		case reply.Error != "":
			return Outcome{}, &domain.RequestError{Status: resp.StatusCode, Message: reply.Error, Details: reply.details()}
		case reply.Message != "":
			set, err := c.registry.MarkRequested(numbers)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Kind: OutcomeMessage, Message: reply.Message, Requested: set}, nil
		default:
			return Outcome{}, domain.ErrUnexpectedResponse
		}

	default:
		c.logger.Warn("unsupported label response", "content_type", resp.ContentType)
		return Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedResponse, resp.ContentType)
	}
}

func (c *Coordinator) saveAndMark(kind OutcomeKind, name string, body []byte, numbers []string, msg string) (Outcome, error) {
	path, err := c.saver.Save(name, body)
	if err != nil {
		return Outcome{}, err
	}

	set, err := c.registry.MarkRequested(numbers)
	if err != nil {
		// The file is on disk; keep its path for the operator
		c.logger.Error("labels saved but not marked", "path", path, "error", err)
		return Outcome{Kind: kind, Path: path}, fmt.Errorf("labels saved to %s but not marked as requested: %w", path, err)
	}

	c.logger.Info("labels saved", "path", path, "bytes", len(body), "count", len(numbers))
	return Outcome{
		Kind:      kind,
		Message:   fmt.Sprintf("%s: %s", msg, path),
		Path:      path,
		Requested: set,
	}, nil
}

const fallbackRejection = "failed to obtain labels"

// rejected builds the error for a non-2xx answer. It prefers the JSON error
// field, then the JSON message, then the raw body.
func (c *Coordinator) rejected(resp *domain.LabelResponse) error {
	reqErr := &domain.RequestError{Status: resp.StatusCode}

	var reply jsonReply
	if err := json.Unmarshal(resp.Body, &reply); err == nil {
		reqErr.Details = reply.details()
		switch {
		case reply.Error != "":
			reqErr.Message = reply.Error
		case reply.Message != "":
			reqErr.Message = reply.Message
		}
	} else {
		reqErr.Message = strings.TrimSpace(string(resp.Body))
	}
	if reqErr.Message == "" {
		reqErr.Message = fallbackRejection
	}

	c.logger.Error("label request rejected", "status", resp.StatusCode, "message", reqErr.Message)
	return reqErr
}
