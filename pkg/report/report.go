// Package report turns a finished assessment into its text, markdown and
// JSON forms.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

const (
	// Header opens every text report.
	Header = "SUTURING ASSESSMENT RESULTS"

	ruleWidth = 50
)

// Format renders the plain-text report shown to the learner.
func Format(run assessment.Run) (text string) {
	var b strings.Builder

	b.WriteString(Header + "\n")
	fmt.Fprintf(&b, "Video File: %s\n", filepath.Base(run.Submission.VideoPath))
	fmt.Fprintf(&b, "Suture Type: %s\n", rubric.DisplayName(run.SutureType))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for _, item := range run.Items {
		fmt.Fprintf(&b, "%d) %s\n", item.Item.Index, item.Item.Text)
		fmt.Fprintf(&b, "%d/%d %s\n", item.Adjusted, scorer.MaxScore, item.AdjustedLabel)
		fmt.Fprintf(&b, "%s\n\n", singleLine(item.Raw.Justification))
	}

	fmt.Fprintf(&b, "Final Score: %s\n\n", run.Final)
	b.WriteString(strings.TrimSpace(run.Summary) + "\n")

	text = b.String()
	return text
}

// Markdown renders the report for pandoc. Raw model scores are listed next
// to the adjusted ones.
func Markdown(run assessment.Run) (md string) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Suturing Assessment: %s\n\n", run.Title)
	fmt.Fprintf(&b, "- **Video:** %s\n", filepath.Base(run.Submission.VideoPath))
	if run.Submission.ImagePath != "" {
		fmt.Fprintf(&b, "- **Final-product image:** %s\n", filepath.Base(run.Submission.ImagePath))
	}
	if !run.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "- **Assessed:** %s\n", run.CompletedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "- **Run:** %s\n\n", run.ID)

	b.WriteString("| # | Criterion | Raw | Adjusted |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, item := range run.Items {
		fmt.Fprintf(&b, "| %d | %s | %d/5 | %d/5 %s |\n",
			item.Item.Index, escapeCell(item.Item.ItemName()), item.Raw.Score, item.Adjusted, item.AdjustedLabel)
	}
	b.WriteString("\n")

	for _, item := range run.Items {
		fmt.Fprintf(&b, "## %d) %s\n\n", item.Item.Index, item.Item.Text)
		fmt.Fprintf(&b, "**%d/5 %s**\n\n", item.Adjusted, item.AdjustedLabel)
		fmt.Fprintf(&b, "%s\n\n", stripEmoji(singleLine(item.Raw.Justification)))
	}

	fmt.Fprintf(&b, "## Final Score: %s\n\n", run.Final)
	fmt.Fprintf(&b, "%s\n", stripEmoji(strings.TrimSpace(run.Summary)))

	md = b.String()
	return md
}

// BaseName builds the file stem shared by a run's report files, e.g.
// "case-12-simple-interrupted-20250301-090000-5b0f8f0e". The run ID prefix
// keeps same-named videos from different folders apart.
func BaseName(run assessment.Run) (name string) {
	stem := strings.TrimSuffix(filepath.Base(run.Submission.VideoPath), filepath.Ext(run.Submission.VideoPath))
	name = SanitizeFilename(stem + "-" + run.SutureType)
	if !run.CompletedAt.IsZero() {
		name += "-" + run.CompletedAt.UTC().Format("20060102-150405")
	}
	if run.ID != uuid.Nil {
		name += "-" + run.ID.String()[:8]
	}
	return name
}

// SanitizeFilename lowercases name and replaces anything that is not a
// letter or digit with single hyphens.
func SanitizeFilename(name string) (sanitized string) {
	sanitized = strings.ToLower(name)

	// Replace spaces and special chars with hyphens
	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	// Remove consecutive hyphens
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	// Trim hyphens from ends
	sanitized = strings.Trim(sanitized, "-")

	return sanitized
}

func singleLine(text string) (line string) {
	line = strings.Join(strings.Fields(text), " ")
	return line
}

func escapeCell(text string) (escaped string) {
	escaped = strings.ReplaceAll(text, "|", `\|`)
	return escaped
}

// stripEmoji drops emoji that LaTeX cannot typeset.
func stripEmoji(text string) (cleaned string) {
	result := strings.Builder{}
	for _, r := range text {
		if r >= 0x1F300 && r <= 0x1F9FF { // pictographs, emoticons
			continue
		}
		if r >= 0x2600 && r <= 0x27BF { // misc symbols, dingbats
			continue
		}
		result.WriteRune(r)
	}
	cleaned = result.String()

	// Clean up any double spaces left by emoji removal
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return cleaned
}
