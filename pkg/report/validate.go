package report

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

//nolint:gochecknoglobals // compiled once
var (
	itemBlock  = regexp.MustCompile(`(?i)\d+\)\s+[^\n]+\n\d+/5\s+(poor|substandard|competent|proficient|exemplary)\n[^\n]+`)
	finalLine  = regexp.MustCompile(`(?i)Final Score:\s+\d+(\.\d+)?/5\s+(poor|substandard|competent|proficient|exemplary)`)
	summaryTag = regexp.MustCompile(`Summative Comment:\s+`)
)

// Phrases that show the model narrated the video instead of scoring it.
//
//nolint:gochecknoglobals // static list
var verboseMarkers = []string{
	"This video provides",
	"Here is a detailed breakdown",
	"The video shows",
	"```json",
	"timestamps",
	"step-by-step",
}

// Validate checks that a text report has a single header, wantItems scored
// items, a final score line and a summative comment, and that no verbose
// narration leaked in.
func Validate(text string, wantItems int) (err error) {
	if strings.Count(text, Header) > 1 {
		err = errors.New("duplicate report headers")
		return err
	}

	found := len(itemBlock.FindAllString(text, -1))
	if found != wantItems {
		err = errors.Errorf("expected %d rubric points, found %d", wantItems, found)
		return err
	}

	if !finalLine.MatchString(text) {
		err = errors.New("final score not found or incorrect format")
		return err
	}

	if !summaryTag.MatchString(text) {
		err = errors.New("summative comment not found")
		return err
	}

	lower := strings.ToLower(text)
	for _, marker := range verboseMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			err = errors.Errorf("verbose description found: %q", marker)
			return err
		}
	}

	return err
}
