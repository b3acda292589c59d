package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

const (
	noJustification = "No justification provided"
	summaryPrefix   = "Summative Comment:"
)

//nolint:gochecknoglobals // compiled once
var scoreLine = regexp.MustCompile(`(?i)(?:^|[^\d.])(\d+)\s*/\s*5\s+(poor|substandard|competent|proficient|exemplary)`)

//nolint:gochecknoglobals // compiled once
var fractionalScore = regexp.MustCompile(`\d+\.\d+\s*/\s*5\b`)

// ParseItemResponse extracts the score and justification from a model reply
// of the form "N) text\nS/5 label\njustification". A reply without a score
// line or with a fractional score is an InvalidInputError; a whole score
// outside 1-5 is passed through for the scorer to reject.
func ParseItemResponse(text string) (raw assessment.RawScore, err error) {
	raw.Response = text

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	scoreIdx := -1
	for i, line := range lines {
		if frac := fractionalScore.FindString(line); frac != "" {
			err = &scorer.InvalidInputError{Reason: "non-integer score in model reply: " + frac}
			return raw, err
		}

		m := scoreLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw.Score, err = strconv.Atoi(m[1])
		if err != nil {
			err = &scorer.InvalidInputError{Reason: "unreadable score in model reply: " + m[0]}
			return raw, err
		}
		scoreIdx = i
		break
	}

	if scoreIdx < 0 {
		err = &scorer.InvalidInputError{Reason: "model reply has no score line"}
		return raw, err
	}

	// The justification is the first non-empty line after the score. A
	// justification on the score line itself is used when nothing follows.
	raw.Justification = noJustification
	for _, line := range lines[scoreIdx+1:] {
		cleaned := cleanJustification(line)
		if cleaned != "" {
			raw.Justification = cleaned
			return raw, err
		}
	}

	rest := cleanJustification(scoreLine.ReplaceAllString(lines[scoreIdx], ""))
	if rest != "" {
		raw.Justification = rest
	}

	return raw, err
}

func cleanJustification(line string) (cleaned string) {
	cleaned = strings.TrimSpace(line)
	cleaned = strings.Trim(cleaned, "*_ ")
	cleaned = strings.TrimSpace(cleaned)

	lower := strings.ToLower(cleaned)
	if strings.HasPrefix(lower, "justification:") {
		cleaned = strings.TrimSpace(cleaned[len("justification:"):])
		cleaned = strings.Trim(cleaned, "*_ ")
	}

	cleaned = strings.TrimLeft(cleaned, "-:,. ")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

// normalizeSummary makes sure the comment carries the expected prefix.
func normalizeSummary(text string) (comment string) {
	comment = strings.TrimSpace(text)
	comment = strings.TrimPrefix(comment, "**")
	comment = strings.Replace(comment, summaryPrefix+"**", summaryPrefix, 1)

	if !strings.HasPrefix(comment, summaryPrefix) {
		comment = summaryPrefix + " " + comment
	}

	return comment
}
