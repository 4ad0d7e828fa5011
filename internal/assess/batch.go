package assess

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/elocution/pkg/types"
)

// BatchResult pairs one batch item with its outcome. Exactly one of
// Assessment and Err is set.
type BatchResult struct {
	Index      int
	Assessment *types.UtteranceAssessment
	Err        error
}

// AssessBatch scores reqs concurrently, at most the configured batch
// concurrency at a time. Results are returned in request order. A request
// rejected with [ErrInvalidInput] does not stop the batch; its error is
// carried in its [BatchResult]. The returned error is non-nil only when ctx
// is cancelled before every request has been scored.
func (e *Engine) AssessBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	results := make([]BatchResult, len(reqs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.batchConcurrency)

	for i, req := range reqs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			a, err := e.Assess(egCtx, req)
			results[i] = BatchResult{Index: i, Assessment: a, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
