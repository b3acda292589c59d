package assessment

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one submission in a batch.
type Result struct {
	Submission Submission
	Run        Run
	Err        error
}

// RunBatch assesses submissions in parallel, at most concurrency at a time.
// A failed submission does not cancel its siblings; results keep the input
// order.
func (r *Runner) RunBatch(ctx context.Context, subs []Submission, concurrency int) (results []Result) {
	if concurrency < 1 {
		concurrency = 1
	}

	results = make([]Result, len(subs))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, sub := range subs {
		g.Go(func() (err error) {
			run, runErr := r.Run(ctx, sub)
			results[i] = Result{Submission: sub, Run: run, Err: runErr}
			if runErr != nil {
				r.logger.Error("assessment failed", slog.String("video", sub.VideoPath), slog.Any("error", runErr))
			}
			return err
		})
	}

	_ = g.Wait()

	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) (count int) {
	for _, res := range results {
		if res.Err != nil {
			count++
		}
	}
	return count
}
