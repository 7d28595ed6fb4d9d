package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/labeldesk/internal/domain"
)

type staticSource struct {
	name   string
	orders []domain.Order
	err    error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func TestLoad_MergesAndSorts(t *testing.T) {
	server := staticSource{name: "server", orders: []domain.Order{
		{PostingNumber: "P-1", SKU: "A", TrackingNumber: "XX9999"},
		{PostingNumber: "P-2", SKU: "B", TrackingNumber: "XX1234"},
	}}
	file := staticSource{name: "orders.xlsx", orders: []domain.Order{
		{PostingNumber: "P-2", SKU: "B", TrackingNumber: "XX1234", ProductName: "from file"},
		{PostingNumber: "P-3", SKU: "C", TrackingNumber: "YY5000"},
	}}

	svc := NewService([]domain.OrderSource{server, file}, nil)
	res, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Orders, 3)
	assert.Equal(t, "P-2", res.Orders[0].PostingNumber)
	assert.Empty(t, res.Orders[0].ProductName)
	assert.Equal(t, "P-3", res.Orders[1].PostingNumber)
	assert.Equal(t, "P-1", res.Orders[2].PostingNumber)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"server", "orders.xlsx"}, svc.Sources())
}

func TestLoad_PartialFailure(t *testing.T) {
	svc := NewService([]domain.OrderSource{
		staticSource{name: "server", err: domain.ErrServerOffline},
		staticSource{name: "orders.xlsx", orders: []domain.Order{{TrackingNumber: "T1"}}},
	}, nil)

	res, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Orders, 1)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "server", res.Failed[0].Source)
	assert.ErrorIs(t, res.Failed[0], domain.ErrServerOffline)
}

func TestLoad_AllSourcesFail(t *testing.T) {
	svc := NewService([]domain.OrderSource{
		staticSource{name: "server", err: domain.ErrAuthFailed},
		staticSource{name: "orders.xlsx", err: errors.New("missing file")},
	}, nil)

	_, err := svc.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.ErrorContains(t, err, "missing file")
}

func TestLoad_NoSources(t *testing.T) {
	_, err := NewService(nil, nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService([]domain.OrderSource{staticSource{name: "s"}}, nil)
	_, err := svc.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortByLastDigitsIsStable(t *testing.T) {
	orders := []domain.Order{
		{PostingNumber: "b", TrackingNumber: "AA0002"},
		{PostingNumber: "a", TrackingNumber: "BB0001"},
		{PostingNumber: "c", TrackingNumber: "CC0002"},
	}
	SortByLastDigits(orders)

	assert.Equal(t, "a", orders[0].PostingNumber)
	assert.Equal(t, "b", orders[1].PostingNumber)
	assert.Equal(t, "c", orders[2].PostingNumber)
}
