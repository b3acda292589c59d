package assessment

import (
	"fmt"
	"strings"

	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

// Analysis groups the scored items into strengths, areas for improvement
// and competent areas. It is the input a SummaryWriter turns into prose.
func Analysis(req SummaryRequest) (text string) {
	var strengths, weaknesses, competent []string
	for _, item := range req.Items {
		line := fmt.Sprintf("- %s: %s", item.Item.ItemName(), item.Raw.Justification)
		switch {
		case item.Adjusted >= 4:
			strengths = append(strengths, line)
		case item.Adjusted <= 2:
			weaknesses = append(weaknesses, line)
		default:
			competent = append(competent, line)
		}
	}

	parts := []string{fmt.Sprintf("Overall Performance: %s", req.Final)}
	if len(strengths) > 0 {
		parts = append(parts, "Strengths:")
		parts = append(parts, strengths...)
	}
	if len(weaknesses) > 0 {
		parts = append(parts, "Areas for Improvement:")
		parts = append(parts, weaknesses...)
	}
	if len(competent) > 0 {
		parts = append(parts, "Competent Areas:")
		parts = append(parts, competent...)
	}

	text = strings.Join(parts, "\n")
	return text
}

// FallbackComment is the summative comment used when no model comment is
// available. It only depends on the final label band.
func FallbackComment(sutureType string, final scorer.Final) (comment string) {
	technique := strings.ToLower(rubric.DisplayName(sutureType))

	band, err := scorer.ParseLabel(string(final.Label))
	if err != nil {
		band = scorer.CenterScore
	}

	switch {
	case band >= 4:
		comment = fmt.Sprintf("Summative Comment: This %s suture demonstrates %s technique. Continue practicing to maintain this high level of proficiency.", technique, final.Label)
	case band == scorer.CenterScore:
		comment = fmt.Sprintf("Summative Comment: This %s suture shows %s performance with room for improvement. Focus on the areas identified in the individual assessments for enhanced proficiency.", technique, final.Label)
	default:
		comment = fmt.Sprintf("Summative Comment: This %s suture requires significant improvement to reach competent standards. Dedicated practice and attention to the fundamental techniques will lead to substantial progress.", technique)
	}

	return comment
}
