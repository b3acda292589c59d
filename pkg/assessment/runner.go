package assessment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
)

// Runner executes assessments. A Runner is safe for concurrent use as long
// as its Assessor and SummaryWriter are.
type Runner struct {
	assessor Assessor
	writer   SummaryWriter
	catalog  rubric.Catalog
	target   scorer.Distribution
	policy   scorer.TiePolicy
	logger   *slog.Logger
	progress func(sub Submission, item ScoredItem)
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithDistribution sets the target grading curve.
func WithDistribution(target scorer.Distribution) Option {
	return func(r *Runner) {
		r.target = target
	}
}

// WithTiePolicy sets how equal raw scores are remapped.
func WithTiePolicy(policy scorer.TiePolicy) Option {
	return func(r *Runner) {
		r.policy = policy
	}
}

// WithSummaryWriter sets the writer for the summative comment. Without one,
// the fallback comment is used.
func WithSummaryWriter(writer SummaryWriter) Option {
	return func(r *Runner) {
		r.writer = writer
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers a callback invoked after each item is scored. The
// Adjusted field is not yet set when it fires.
func WithProgress(fn func(sub Submission, item ScoredItem)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a runner. The target distribution is validated here so
// a bad curve fails before any model call is made.
func NewRunner(assessor Assessor, catalog rubric.Catalog, opts ...Option) (runner *Runner, err error) {
	if assessor == nil {
		err = errors.New("assessor is required")
		return runner, err
	}

	runner = &Runner{
		assessor: assessor,
		catalog:  catalog,
		target:   scorer.DefaultDistribution(),
		policy:   scorer.TiesShareScore,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(runner)
	}

	err = runner.target.Validate()
	if err != nil {
		runner = nil
		return runner, err
	}

	return runner, err
}

// Run assesses a single submission. Scorer errors (out-of-range raw scores
// from the model, for instance) abort the run and can be detected with
// scorer.IsIntegrationError.
func (r *Runner) Run(ctx context.Context, sub Submission) (run Run, err error) {
	var set rubric.Set
	set, err = r.catalog.Lookup(sub.SutureType)
	if err != nil {
		return run, err
	}

	run = Run{
		ID:           uuid.New(),
		SutureType:   set.SutureType,
		Title:        set.Title,
		Submission:   sub,
		Items:        make([]ScoredItem, 0, len(set.Items)),
		Distribution: r.target.Map(),
		TiePolicy:    r.policy,
		StartedAt:    r.now(),
	}

	logger := r.logger.With(slog.String("run_id", run.ID.String()), slog.String("suture_type", sub.SutureType))
	logger.Info("assessment started", slog.String("video", sub.VideoPath), slog.Int("items", len(set.Items)))

	// Score every item
	for _, item := range set.Items {
		err = ctx.Err()
		if err != nil {
			err = errors.Wrap(err, "assessment cancelled")
			return run, err
		}

		var raw RawScore
		raw, err = r.assessor.AssessItem(ctx, ItemRequest{
			SutureType: set.SutureType,
			Item:       item,
			Submission: sub,
		})
		if err != nil {
			err = errors.Wrapf(err, "failed to assess item %d (%s)", item.Index, item.ItemName())
			return run, err
		}

		scored := ScoredItem{Item: item, Raw: raw}
		run.Items = append(run.Items, scored)
		logger.Debug("item scored", slog.Int("item", item.Index), slog.Int("raw", raw.Score))

		if r.progress != nil {
			r.progress(sub, scored)
		}
	}

	// Fit raw scores to the curve
	var adjusted []int
	adjusted, err = scorer.NormalizeWithPolicy(run.RawScores(), r.target, r.policy)
	if err != nil {
		err = errors.Wrap(err, "score normalization failed")
		return run, err
	}
	for i := range run.Items {
		run.Items[i].Adjusted = adjusted[i]
		run.Items[i].AdjustedLabel = scorer.LabelFor(adjusted[i])
	}

	run.Final, err = scorer.ComputeFinal(adjusted)
	if err != nil {
		err = errors.Wrap(err, "final score computation failed")
		return run, err
	}

	run.Summary = r.summarize(ctx, logger, run)
	run.CompletedAt = r.now()

	logger.Info("assessment completed",
		slog.Any("raw", run.RawScores()),
		slog.Any("adjusted", adjusted),
		slog.Float64("final_score", run.Final.Score),
		slog.String("final_label", string(run.Final.Label)),
	)

	return run, err
}

// summarize asks the SummaryWriter for a comment, falling back to a canned
// comment when none is configured or the call fails.
func (r *Runner) summarize(ctx context.Context, logger *slog.Logger, run Run) (comment string) {
	if r.writer == nil {
		comment = FallbackComment(run.SutureType, run.Final)
		return comment
	}

	comment, err := r.writer.Summarize(ctx, SummaryRequest{
		SutureType: run.SutureType,
		Items:      run.Items,
		Final:      run.Final,
	})
	if err != nil {
		logger.Warn("summative comment generation failed, using fallback", slog.Any("error", err))
		comment = FallbackComment(run.SutureType, run.Final)
		return comment
	}

	return comment
}
