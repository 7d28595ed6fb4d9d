package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/labeldesk/internal/domain"
)

const maxConcurrentSources = 4

// SourceError records a source that failed while others succeeded
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// LoadResult is the merged queue plus the sources that could not be read
type LoadResult struct {
	Orders []domain.Order
	Failed []SourceError
}

// Service loads the order queue from all configured sources
type Service struct {
	sources []domain.OrderSource
	logger  *slog.Logger
}

// NewService creates an order service
func NewService(sources []domain.OrderSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sources: sources, logger: logger}
}

// Sources returns the configured source names
func (s *Service) Sources() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Load fetches every source concurrently and merges the results.
// Sources are merged in configuration order; a product line seen in an
// earlier source wins. The queue is stably sorted by the last four digits
// of the tracking number. Load fails only when every source failed.
func (s *Service) Load(ctx context.Context) (LoadResult, error) {
	if len(s.sources) == 0 {
		return LoadResult{}, domain.ErrNotConfigured
	}

	results := make([][]domain.Order, len(s.sources))
	errs := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSources)
	for i, src := range s.sources {
		g.Go(func() error {
			orders, err := src.FetchOrders(gctx)
			if err != nil {
				s.logger.Error("failed to load orders", "source", src.Name(), "error", err)
				errs[i] = err
				return nil
			}
			s.logger.Debug("loaded orders", "source", src.Name(), "count", len(orders))
			results[i] = orders
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}

	var res LoadResult
	seen := make(map[string]bool)
	for i, src := range s.sources {
		if errs[i] != nil {
			res.Failed = append(res.Failed, SourceError{Source: src.Name(), Err: errs[i]})
			continue
		}
		for _, o := range results[i] {
			id := identity(o)
			if seen[id] {
				continue
			}
			seen[id] = true
			res.Orders = append(res.Orders, o)
		}
	}

	if len(res.Failed) == len(s.sources) {
		joined := make([]error, len(res.Failed))
		for i, f := range res.Failed {
			joined[i] = f
		}
		return LoadResult{}, errors.Join(joined...)
	}

	SortByLastDigits(res.Orders)
	s.logger.Info("order queue loaded", "orders", len(res.Orders), "failed_sources", len(res.Failed))
	return res, nil
}

// SortByLastDigits orders the queue the way couriers read labels
func SortByLastDigits(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].LastDigits() < orders[j].LastDigits()
	})
}
