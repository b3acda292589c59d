package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikogura/suture-assessor/pkg/scorer"
)

// Summary aggregates indexed runs.
type Summary struct {
	SutureType string // empty means every type
	Runs       int
	Raw        scorer.Counts
	Adjusted   scorer.Counts
	MeanFinal  map[string]float64 // by suture type
	Labels     map[string]int     // final labels
}

// Row compares one score value's target share with what was observed.
type Row struct {
	Value    int
	Target   float64
	Raw      float64
	Adjusted float64
}

// Summarize aggregates the index, optionally restricted to one suture type.
func Summarize(index Index, sutureType string) (summary Summary) {
	summary = Summary{
		SutureType: sutureType,
		MeanFinal:  make(map[string]float64),
		Labels:     make(map[string]int),
	}

	totals := make(map[string]float64)
	runs := make(map[string]int)

	for _, entry := range index.Entries {
		if sutureType != "" && entry.SutureType != sutureType {
			continue
		}

		summary.Runs++
		addCounts(&summary.Raw, scorer.CountValues(entry.Raw))
		addCounts(&summary.Adjusted, scorer.CountValues(entry.Adjusted))
		summary.Labels[entry.FinalLabel]++

		totals[entry.SutureType] += entry.FinalScore
		runs[entry.SutureType]++
	}

	for t, total := range totals {
		summary.MeanFinal[t] = total / float64(runs[t])
	}

	return summary
}

func addCounts(into *scorer.Counts, add scorer.Counts) {
	for v := scorer.MinScore; v <= scorer.MaxScore; v++ {
		into[v] += add[v]
	}
}

// Compare lines up the observed raw and adjusted percentages against the
// target curve, one row per score value.
func Compare(summary Summary, target scorer.Distribution) (rows []Row) {
	rawTotal := summary.Raw.Total()
	adjTotal := summary.Adjusted.Total()

	for v := scorer.MinScore; v <= scorer.MaxScore; v++ {
		rows = append(rows, Row{
			Value:    v,
			Target:   target.Percent(v),
			Raw:      percent(summary.Raw[v], rawTotal),
			Adjusted: percent(summary.Adjusted[v], adjTotal),
		})
	}

	return rows
}

func percent(count, total int) (pct float64) {
	if total == 0 {
		return pct
	}
	pct = 100 * float64(count) / float64(total)
	return pct
}

// FormatComparison renders the summary and comparison as a text table.
func FormatComparison(summary Summary, rows []Row) (formatted string) {
	if summary.Runs == 0 {
		formatted = "No assessment records found."
		return formatted
	}

	var b strings.Builder

	scope := "all suture types"
	if summary.SutureType != "" {
		scope = summary.SutureType
	}
	fmt.Fprintf(&b, "%d runs (%s), %d items scored\n\n", summary.Runs, scope, summary.Adjusted.Total())

	fmt.Fprintf(&b, "%-7s %8s %8s %10s\n", "Score", "Target", "Raw", "Adjusted")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-7s %7.1f%% %7.1f%% %9.1f%%\n",
			fmt.Sprintf("%d/5", row.Value), row.Target, row.Raw, row.Adjusted)
	}

	types := make([]string, 0, len(summary.MeanFinal))
	for t := range summary.MeanFinal {
		types = append(types, t)
	}
	sort.Strings(types)

	b.WriteString("\nMean final score:\n")
	for _, t := range types {
		fmt.Fprintf(&b, "  %-20s %.2f\n", t, summary.MeanFinal[t])
	}

	formatted = b.String()
	return formatted
}
