package labelserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/labeldesk/internal/domain"
)

func TestRequestLabels_SendsPayloadAndHeaders(t *testing.T) {
	var got struct {
		method, csrf, cookie, contentType, requestID string
		body                                         map[string][]string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.csrf = r.Header.Get("X-CSRFToken")
		got.contentType = r.Header.Get("Content-Type")
		got.requestID = r.Header.Get("X-Request-ID")
		if c, err := r.Cookie("session"); err == nil {
			got.cookie = c.Value
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.body)

		assert.Equal(t, DefaultLabelsPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/", CSRFToken: "tok", SessionCookie: "sess"}, nil)
	resp, err := c.RequestLabels(context.Background(), []string{"T1", "T2"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "tok", got.csrf)
	assert.Equal(t, "sess", got.cookie)
	assert.Equal(t, "application/json", got.contentType)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, []string{"T1", "T2"}, got.body["ozon_tracking_numbers"])

	assert.True(t, resp.OK())
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, "%PDF", string(resp.Body))
}

func TestRequestLabels_ErrorStatusIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"empty"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(Options{BaseURL: srv.URL}, nil).RequestLabels(context.Background(), []string{"T1"})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestLabels_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Options{BaseURL: url}, nil).RequestLabels(context.Background(), []string{"T1"})

	assert.True(t, errors.Is(err, domain.ErrServerOffline))
}

func TestFetchOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultOrdersPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"postings":[{"shop":"S","posting_number":"P-1","offer_id":"SKU","name":"Mug","quantity":2,"tracking_number":"TRK0001","warehouse":"rFBS"}],"error":null}`))
	}))
	defer srv.Close()

	orders, err := NewClient(Options{BaseURL: srv.URL}, nil).FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, domain.Order{
		Shop:           "S",
		PostingNumber:  "P-1",
		SKU:            "SKU",
		ProductName:    "Mug",
		Quantity:       2,
		TrackingNumber: "TRK0001",
		Warehouse:      "rFBS",
	}, orders[0])
}

func TestFetchOrders_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrAuthFailed)
		}},
		{"server message", http.StatusNotFound, `{"postings":[],"error":"no orders"}`, func(t *testing.T, err error) {
			var reqErr *domain.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, "no orders", reqErr.Message)
		}},
		{"html error page", http.StatusInternalServerError, "<html>", func(t *testing.T, err error) {
			assert.ErrorContains(t, err, "500")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Options{BaseURL: srv.URL}, nil).FetchOrders(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
