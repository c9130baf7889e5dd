package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome of one request of a batch. Exactly one of
// Response and Error is set.
type BatchItem struct {
	Index    int               `json:"index"`
	Response *ForecastResponse `json:"response,omitempty"`
	Error    *ServiceError     `json:"error,omitempty"`
}

// ExecuteBatch fits every request with at most model.batch_workers fits in
// flight. A failing request does not stop the others; its error is reported
// in its item. Items keep the order of reqs.
func (s *ForecastService) ExecuteBatch(ctx context.Context, reqs []*ForecastRequest) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, NewServiceError(CodeInvalidRequest, "batch is empty")
	}
	if s.defaults.MaxBatchSize > 0 && len(reqs) > s.defaults.MaxBatchSize {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest,
			fmt.Sprintf("batch holds %d requests, limit is %d", len(reqs), s.defaults.MaxBatchSize),
			map[string]interface{}{"max_batch_size": s.defaults.MaxBatchSize})
	}

	workers := s.defaults.BatchWorkers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	items := make([]BatchItem, len(reqs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			items[i].Index = i
			resp, err := s.Execute(ctx, req)
			if err != nil {
				items[i].Error = classify(err)
				return nil
			}
			items[i].Response = resp
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Error != nil {
			failed++
		}
	}
	s.logger.WithContext(ctx).Info("Batch completed",
		"requests", len(reqs),
		"failed", failed,
		"workers", workers,
		"latency_ms", time.Since(start).Milliseconds())

	return items, nil
}
