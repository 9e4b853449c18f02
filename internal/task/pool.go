package task

import (
	"context"
	"sync"
)

// BatchResult tallies how the items of one batch ended.
type BatchResult struct {
	Done      int
	Skipped   int
	Abandoned int
	Failures  []ItemError
}

// RunBatch runs fn for every item on at most workers goroutines and blocks
// until every claimed item has finished. Each item is claimed by exactly
// one worker. A failed item does not stop its siblings unless failFast is
// set; then, as on ctx cancellation, unclaimed items are abandoned.
func RunBatch(
	ctx context.Context,
	items []WorkItem,
	workers int,
	failFast bool,
	fn func(context.Context, WorkItem) (Outcome, error),
) BatchResult {
	var result BatchResult
	if len(items) == 0 {
		return result
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	queue := make(chan WorkItem, len(items))
	for _, item := range items {
		queue <- item
	}
	close(queue)

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				if batchCtx.Err() != nil {
					mu.Lock()
					result.Abandoned++
					mu.Unlock()
					return
				}
				outcome, err := fn(batchCtx, item)

				mu.Lock()
				switch {
				case err != nil:
					result.Failures = append(result.Failures, ItemError{Item: item, Err: err})
				case outcome == OutcomeSkipped:
					result.Skipped++
				default:
					result.Done++
				}
				mu.Unlock()

				if err != nil && failFast {
					cancel()
				}
			}
		}()
	}
	wg.Wait()

	result.Abandoned += len(queue)
	return result
}
