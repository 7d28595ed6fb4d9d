package domain

import "context"

// KVStore is a small persistent key-value store.
// It replaces browser local storage for client-side state.
type KVStore interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key
	Set(key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error

	Close() error
}

// OrderSource provides orders awaiting shipment
type OrderSource interface {
	// Name identifies the source in logs and messages
	Name() string

	// FetchOrders returns all orders from the source
	FetchOrders(ctx context.Context) ([]Order, error)
}

// LabelResponse is the raw answer of the label endpoint
type LabelResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the status code is 2xx
func (r *LabelResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// LabelClient sends label requests to the label server
type LabelClient interface {
	RequestLabels(ctx context.Context, trackingNumbers []string) (*LabelResponse, error)
}

// Clipboard receives copied text
type Clipboard interface {
	WriteText(text string) error
}

// FileOpener shows a saved file to the user
type FileOpener interface {
	Open(path string) error
}
