package scorer

import (
	"fmt"
	"strings"
)

// Label is the human-readable rating for a whole-number score.
type Label string

const (
	LabelPoor        Label = "poor"
	LabelSubstandard Label = "substandard"
	LabelCompetent   Label = "competent"
	LabelProficient  Label = "proficient"
	LabelExemplary   Label = "exemplary"
)

//nolint:gochecknoglobals // Rating scale constants
var labels = [MaxScore + 1]Label{"", LabelPoor, LabelSubstandard, LabelCompetent, LabelProficient, LabelExemplary}

// LabelFor returns the label for a score, clipped to the 1-5 scale.
func LabelFor(score int) (label Label) {
	score = max(MinScore, min(MaxScore, score))
	label = labels[score]
	return label
}

// ParseLabel maps a label (any case) back to its score.
func ParseLabel(s string) (score int, err error) {
	want := Label(strings.ToLower(strings.TrimSpace(s)))
	for v := MinScore; v <= MaxScore; v++ {
		if labels[v] == want {
			score = v
			return score, err
		}
	}
	err = fmt.Errorf("unknown rating label %q", s)
	return score, err
}

// Final is the summary of one assessment run.
type Final struct {
	Score float64 `json:"score"` // mean of adjusted scores, one decimal
	Label Label   `json:"label"`
}

func (f Final) String() (s string) {
	s = fmt.Sprintf("%.1f/%d %s", f.Score, MaxScore, f.Label)
	return s
}

// ComputeFinal averages the adjusted scores. The mean is rounded half-up to
// one decimal place, and the label comes from rounding that value half-up to
// a whole score. Rounding is done in integer tenths so 2.85 never becomes
// 2.8 through float error.
func ComputeFinal(adjusted []int) (final Final, err error) {
	if len(adjusted) == 0 {
		err = &InvalidInputError{Reason: "no adjusted scores to average"}
		return final, err
	}

	err = ValidateScores(adjusted)
	if err != nil {
		return final, err
	}

	sum := 0
	for _, s := range adjusted {
		sum += s
	}
	n := len(adjusted)

	// round(10*sum/n) with halves going up
	tenths := (20*sum + n) / (2 * n)

	final.Score = float64(tenths) / 10
	final.Label = LabelFor((tenths + 5) / 10)

	return final, err
}
