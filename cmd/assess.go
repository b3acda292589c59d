package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/config"
	"github.com/nikogura/suture-assessor/pkg/history"
	"github.com/nikogura/suture-assessor/pkg/llm"
	"github.com/nikogura/suture-assessor/pkg/media"
	"github.com/nikogura/suture-assessor/pkg/renderer"
	"github.com/nikogura/suture-assessor/pkg/report"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sutureType string

//nolint:gochecknoglobals // Cobra boilerplate
var imagePath string

//nolint:gochecknoglobals // Cobra boilerplate
var refImagePath string

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var renderPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var keepMarkdown bool

//nolint:gochecknoglobals // Cobra boilerplate
var tiePolicy string

//nolint:gochecknoglobals // Cobra boilerplate
var distribution string

//nolint:gochecknoglobals // Cobra boilerplate
var batchFile string

//nolint:gochecknoglobals // Cobra boilerplate
var concurrency int

//nolint:gochecknoglobals // Cobra boilerplate
var timeout time.Duration

//nolint:gochecknoglobals // Cobra boilerplate
var assessCmd = &cobra.Command{
	Use:   "assess [video]",
	Short: "Assess a suturing video against its rubric",
	Long: `Score each rubric item for the suture type with Gemini, fit the raw scores
to the grading curve, and write the report, JSON record and optional PDF.

VIDEO items are judged from the procedure video; STILL items from the
final-product image (--image), with an optional reference image.

Example:
  suture-assessor assess case12.mp4 --suture-type simple_interrupted --image case12-final.png
  suture-assessor assess case12.mp4 --suture-type subcuticular --image final.png --ref-image ideal.png --pdf
  suture-assessor assess --batch cohort.yaml --concurrency 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssess,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().StringVar(&sutureType, "suture-type", "", "Suture type: simple_interrupted, vertical_mattress or subcuticular")
	assessCmd.Flags().StringVar(&imagePath, "image", "", "Final-product image for STILL rubric items")
	assessCmd.Flags().StringVar(&refImagePath, "ref-image", "", "Optional reference image of the finished technique")
	assessCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	assessCmd.Flags().BoolVar(&renderPDF, "pdf", false, "Render a PDF report with pandoc")
	assessCmd.Flags().BoolVar(&keepMarkdown, "keep-markdown", true, "Keep markdown files after PDF generation")
	assessCmd.Flags().StringVar(&tiePolicy, "tie-policy", "", "How equal raw scores are remapped: share or position (default from config)")
	assessCmd.Flags().StringVar(&distribution, "distribution", "", "Target percentages for scores 1-5, e.g. 3,7,80,7,3 (default from config)")
	assessCmd.Flags().StringVar(&batchFile, "batch", "", "YAML manifest of submissions to assess concurrently")
	assessCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel submissions in batch mode (default from config)")
	assessCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Overall time limit")
}

func runAssess(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := newLogger()

	// Collect submissions
	var subs []assessment.Submission
	subs, err = collectSubmissions(args)
	if err != nil {
		return err
	}

	// Setup: config, rubrics, model clients
	var cfg config.Config
	var runner *assessment.Runner
	cfg, runner, err = setupAssessment(logger)
	if err != nil {
		return describeError(err)
	}

	baseOutDir := getOutputDir(outputDir, cfg.Defaults.OutputDir)

	// Download any media given as URLs
	var downloadDir string
	downloadDir, err = os.MkdirTemp("", "suture-assessor-media-")
	if err != nil {
		return errors.Wrap(err, "failed to create download directory")
	}
	defer os.RemoveAll(downloadDir)

	subs, err = localizeSubmissions(ctx, media.NewFetcher(downloadDir), subs)
	if err != nil {
		return err
	}

	if len(subs) == 1 {
		err = assessOne(ctx, runner, cfg, subs[0], baseOutDir)
	} else {
		err = assessBatch(ctx, runner, cfg, subs, baseOutDir)
	}

	// Keep the history index current
	updateHistory(ctx, baseOutDir, logger)

	return err
}

func collectSubmissions(args []string) (subs []assessment.Submission, err error) {
	if batchFile != "" {
		if len(args) > 0 {
			err = errors.New("give either a video or --batch, not both")
			return subs, err
		}
		subs, err = assessment.LoadManifest(batchFile)
		return subs, err
	}

	if len(args) == 0 {
		err = errors.New("a video path (or --batch manifest) is required")
		return subs, err
	}

	if sutureType == "" {
		err = errors.New("--suture-type is required")
		return subs, err
	}

	subs = []assessment.Submission{{
		SutureType:   sutureType,
		VideoPath:    args[0],
		ImagePath:    imagePath,
		RefImagePath: refImagePath,
	}}

	return subs, err
}

// localizeSubmissions resolves every submission's media to local files.
func localizeSubmissions(ctx context.Context, fetcher *media.Fetcher, subs []assessment.Submission) (local []assessment.Submission, err error) {
	local = make([]assessment.Submission, 0, len(subs))
	for _, sub := range subs {
		var l assessment.Submission
		l, err = fetcher.Localize(ctx, sub)
		if err != nil {
			return local, err
		}
		local = append(local, l)
	}

	return local, err
}

// setupAssessment loads config and rubrics and builds the runner.
func setupAssessment(logger *slog.Logger) (cfg config.Config, runner *assessment.Runner, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		return cfg, runner, err
	}

	var catalog rubric.Catalog
	catalog, err = rubric.Load(cfg.RubricLocation)
	if err != nil {
		return cfg, runner, err
	}

	var target scorer.Distribution
	target, err = resolveTarget(distribution, &cfg)
	if err != nil {
		return cfg, runner, err
	}

	var policy scorer.TiePolicy
	policy, err = resolvePolicy(tiePolicy, &cfg)
	if err != nil {
		return cfg, runner, err
	}

	client := llm.NewClient(cfg.GeminiAPIKey, cfg.GetAssessmentModel(),
		llm.WithInlineLimit(cfg.InlineLimitBytes),
		llm.WithLogger(logger),
	)

	var writer assessment.SummaryWriter
	writer, err = newSummaryWriter(cfg, client, logger)
	if err != nil {
		return cfg, runner, err
	}

	opts := []assessment.Option{
		assessment.WithDistribution(target),
		assessment.WithTiePolicy(policy),
		assessment.WithSummaryWriter(writer),
		assessment.WithLogger(logger),
	}
	if getVerbose() {
		opts = append(opts, assessment.WithProgress(func(sub assessment.Submission, item assessment.ScoredItem) {
			fmt.Printf("  [%s] item %d: %d/5 (%s)\n", filepath.Base(sub.VideoPath), item.Item.Index, item.Raw.Score, item.Item.ItemName())
		}))
	}

	runner, err = assessment.NewRunner(client, catalog, opts...)
	if err != nil {
		return cfg, runner, err
	}

	if getVerbose() {
		fmt.Printf("Model: %s\n", client.Model())
		fmt.Printf("Target distribution: %s (tie policy: %s)\n", target, policy)
		fmt.Printf("Summary provider: %s\n", cfg.SummaryProvider)
	}

	return cfg, runner, err
}

// newSummaryWriter returns the configured provider for summative comments.
func newSummaryWriter(cfg config.Config, assessClient *llm.Client, logger *slog.Logger) (writer assessment.SummaryWriter, err error) {
	switch cfg.SummaryProvider {
	case config.ProviderAnthropic:
		writer, err = llm.NewAnthropicWriter(cfg.AnthropicAPIKey, cfg.GetSummaryModel(), "")
		return writer, err
	default:
		if cfg.GetSummaryModel() == assessClient.Model() {
			writer = assessClient
			return writer, err
		}
		writer = llm.NewClient(cfg.GeminiAPIKey, cfg.GetSummaryModel(), llm.WithLogger(logger))
		return writer, err
	}
}

func assessOne(ctx context.Context, runner *assessment.Runner, cfg config.Config, sub assessment.Submission, baseOutDir string) (err error) {
	// Show spinner during assessment unless in verbose mode
	var s *spinner
	if !getVerbose() {
		s = newSpinner(fmt.Sprintf("Assessing %s with Gemini...", filepath.Base(sub.VideoPath)))
		s.start()
	}

	var run assessment.Run
	run, err = runner.Run(ctx, sub)
	s.stopSpinner()
	if err != nil {
		return describeError(err)
	}

	fmt.Println(report.Format(run))

	var paths []string
	paths, err = writeOutputs(run, cfg, baseOutDir)
	if err != nil {
		return err
	}

	fmt.Println("Files written:")
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}

	return err
}

func assessBatch(ctx context.Context, runner *assessment.Runner, cfg config.Config, subs []assessment.Submission, baseOutDir string) (err error) {
	limit := concurrency
	if limit < 1 {
		limit = cfg.Defaults.Concurrency
	}

	fmt.Printf("Assessing %d submissions (%d at a time)...\n", len(subs), limit)

	results := runner.RunBatch(ctx, subs, limit)

	for _, res := range results {
		name := filepath.Base(res.Submission.VideoPath)
		if res.Err != nil {
			fmt.Printf("✗ %s: %v\n", name, describeError(res.Err))
			continue
		}

		_, writeErr := writeOutputs(res.Run, cfg, baseOutDir)
		if writeErr != nil {
			fmt.Printf("✗ %s: %v\n", name, writeErr)
			continue
		}

		fmt.Printf("✓ %s (%s): Final Score %s\n", name, res.Run.SutureType, res.Run.Final)
	}

	failed := assessment.Failed(results)
	if failed > 0 {
		err = errors.Errorf("%d of %d submissions failed", failed, len(results))
		return err
	}

	return err
}

// writeOutputs writes the text report and JSON record, and the PDF when
// requested. It returns the paths written.
func writeOutputs(run assessment.Run, cfg config.Config, baseOutDir string) (paths []string, err error) {
	dir := filepath.Join(baseOutDir, run.SutureType)
	base := filepath.Join(dir, report.BaseName(run))

	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", dir)
		return paths, err
	}

	// Text report
	text := report.Format(run)
	formatErr := report.Validate(text, len(run.Items))
	if formatErr != nil && getVerbose() {
		fmt.Printf("Warning: report format check failed: %v\n", formatErr)
	}

	textPath := base + ".txt"
	err = os.WriteFile(textPath, []byte(text), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write report: %s", textPath)
		return paths, err
	}
	paths = append(paths, textPath)

	// JSON record
	recordPath := base + report.RecordSuffix
	err = report.WriteRecord(recordPath, run)
	if err != nil {
		return paths, err
	}
	paths = append(paths, recordPath)

	if !renderPDF {
		return paths, err
	}

	// Markdown and PDF
	mdPath := base + ".md"
	pdfPath := base + ".pdf"

	err = renderer.WriteMarkdown(report.Markdown(run), mdPath)
	if err != nil {
		return paths, err
	}

	err = renderer.RenderPDF(mdPath, pdfPath, cfg.Pandoc.TemplatePath)
	if err != nil {
		return paths, err
	}
	paths = append(paths, pdfPath)

	if keepMarkdown {
		paths = append(paths, mdPath)
		return paths, err
	}

	err = renderer.CleanupMarkdown(mdPath)

	return paths, err
}

func updateHistory(ctx context.Context, baseOutDir string, logger *slog.Logger) {
	indexer, err := history.NewIndexer(baseOutDir, logger)
	if err != nil {
		logger.Warn("history index not updated", slog.Any("error", err))
		return
	}

	_, err = indexer.Index(ctx)
	if err != nil {
		logger.Warn("history index not updated", slog.Any("error", err))
	}
}

// getOutputDir returns the flag value if set, otherwise the config value.
func getOutputDir(flagValue, configValue string) (outDir string) {
	if flagValue != "" {
		outDir = flagValue
		return outDir
	}
	outDir = configValue
	return outDir
}
