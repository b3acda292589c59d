package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nikogura/suture-assessor/pkg/config"
	"github.com/nikogura/suture-assessor/pkg/history"
	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var historyOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var historySutureType string

//nolint:gochecknoglobals // Cobra boilerplate
var historyDistribution string

//nolint:gochecknoglobals // Cobra boilerplate
var skipReindex bool

//nolint:gochecknoglobals // Cobra boilerplate
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Compare past scores with the grading curve",
	Long: `Rebuild the index of past assessment records and print the observed raw
and adjusted score distribution next to the target curve, plus the mean
final score per suture type.

With only a handful of items per run, the adjusted distribution cannot hit
the target exactly; this report shows how far it drifts over many runs.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyOutputDir, "output-dir", "", "Directory holding assessment records (default from config)")
	historyCmd.Flags().StringVar(&historySutureType, "suture-type", "", "Only include this suture type")
	historyCmd.Flags().StringVar(&historyDistribution, "distribution", "", "Target percentages to compare against (default from config)")
	historyCmd.Flags().BoolVar(&skipReindex, "no-reindex", false, "Use the existing index without rescanning")
}

func runHistory(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Config is optional when the directory is given
	var cfgPtr *config.Config
	cfg, cfgErr := config.Load(getConfigFile())
	if cfgErr == nil {
		cfgPtr = &cfg
	}

	dir := historyOutputDir
	if dir == "" {
		if cfgPtr == nil {
			err = errors.Wrap(cfgErr, "--output-dir is required without a usable config")
			return err
		}
		dir = cfg.Defaults.OutputDir
	}

	var target scorer.Distribution
	target, err = resolveTarget(historyDistribution, cfgPtr)
	if err != nil {
		return describeError(err)
	}

	var indexer *history.Indexer
	indexer, err = history.NewIndexer(dir, newLogger())
	if err != nil {
		return err
	}

	if !skipReindex {
		var count int
		count, err = indexer.Index(ctx)
		if err != nil {
			return err
		}
		if getVerbose() {
			fmt.Printf("Indexed %d records into %s\n\n", count, indexer.Path())
		}
	}

	var index history.Index
	index, err = indexer.LoadIndex()
	if err != nil {
		return err
	}

	summary := history.Summarize(index, historySutureType)
	fmt.Println(history.FormatComparison(summary, history.Compare(summary, target)))

	return err
}
