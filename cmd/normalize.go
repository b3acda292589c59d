package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var normalizeScores string

//nolint:gochecknoglobals // Cobra boilerplate
var normalizeDistribution string

//nolint:gochecknoglobals // Cobra boilerplate
var normalizeTiePolicy string

//nolint:gochecknoglobals // Cobra boilerplate
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Fit a list of raw scores to the grading curve",
	Long: `Fit raw 1-5 scores to the target distribution without calling any model,
and print the apportioned counts, adjusted scores and final score.

Example:
  suture-assessor normalize --scores 5,4,3,2,1,3,4
  suture-assessor normalize --scores 4,4,5,5 --distribution 20,20,20,20,20 --tie-policy position`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVar(&normalizeScores, "scores", "", "Comma-separated raw scores (required)")
	normalizeCmd.Flags().StringVar(&normalizeDistribution, "distribution", "", "Target percentages for scores 1-5 (default 3,7,80,7,3)")
	normalizeCmd.Flags().StringVar(&normalizeTiePolicy, "tie-policy", "", "How equal raw scores are remapped: share or position (default share)")
	_ = normalizeCmd.MarkFlagRequired("scores")
}

func runNormalize(cmd *cobra.Command, args []string) (err error) {
	var raw []int
	raw, err = parseScores(normalizeScores)
	if err != nil {
		return err
	}

	var target scorer.Distribution
	target, err = resolveTarget(normalizeDistribution, nil)
	if err != nil {
		return describeError(err)
	}

	var policy scorer.TiePolicy
	policy, err = resolvePolicy(normalizeTiePolicy, nil)
	if err != nil {
		return err
	}

	var adjusted []int
	adjusted, err = scorer.NormalizeWithPolicy(raw, target, policy)
	if err != nil {
		return describeError(err)
	}

	var counts scorer.Counts
	counts, err = scorer.Apportion(target, len(raw))
	if err != nil {
		return describeError(err)
	}

	var final scorer.Final
	final, err = scorer.ComputeFinal(adjusted)
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("Target:      %s\n", target)
	fmt.Printf("Counts:      %s\n", counts)
	fmt.Printf("Tie policy:  %s\n", policy)
	fmt.Printf("Raw:         %s\n", joinScores(raw))
	fmt.Printf("Adjusted:    %s\n", joinScores(adjusted))
	fmt.Printf("Final Score: %s\n", final)

	return err
}

func parseScores(s string) (scores []int, err error) {
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		var score int
		score, err = strconv.Atoi(field)
		if err != nil {
			err = errors.Wrapf(err, "invalid score %q", field)
			return scores, err
		}
		scores = append(scores, score)
	}
	return scores, err
}

func joinScores(scores []int) (s string) {
	parts := make([]string, len(scores))
	for i, score := range scores {
		parts[i] = strconv.Itoa(score)
	}
	s = strings.Join(parts, ",")
	return s
}
