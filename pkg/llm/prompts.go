package llm

import (
	"fmt"
	"strings"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/rubric"
)

const ratingLegend = "Use rating labels: 1/5 poor, 2/5 substandard, 3/5 competent, 4/5 proficient, 5/5 exemplary."

// criteria holds per-item scoring anchors keyed by item name. Items without
// anchors get the generic prompt.
//
//nolint:gochecknoglobals // static prompt data
var criteria = map[string]struct {
	anchors []string
	focus   []string
	tone    string
}{
	"needle perpendicular to skin": {
		anchors: []string{
			"5/5 exemplary → consistently within 5° of perpendicular (85–95°) on both entry and exit.",
			"4/5 proficient → mostly within 10° (80–100°), occasional minor deviation.",
			"3/5 competent → generally within 15° (75–105°), some noticeable deviations.",
			"2/5 substandard → frequent deviation beyond 15°.",
			"1/5 poor → predominantly oblique (>20° deviation), few or no perpendicular passes.",
		},
		focus: []string{"angle of both entry and exit passes", "across all stitches observed (not just one example)"},
		tone:  "Describe the angle patterns, mention consistency or inconsistency, and avoid value-laden language.",
	},
	"avoiding multiple forceps grasps": {
		anchors: []string{
			"5/5 exemplary → single, precise forceps grasp per skin edge, no regrasping or repositioning needed.",
			"4/5 proficient → mostly single grasps, occasional minor repositioning (1-2 instances per stitch).",
			"3/5 competent → generally single grasps, some regrasping or repositioning (3-4 instances per stitch).",
			"2/5 substandard → frequent multiple grasps, significant repositioning needed (5+ instances per stitch).",
			"1/5 poor → excessive regrasping, multiple attempts per edge, poor tissue handling.",
		},
		focus: []string{"number of grasps per skin edge", "tissue handling", "across all stitches observed"},
		tone:  "Describe the grasping pattern and how often repositioning occurs.",
	},
	"instrument ties with square knots": {
		anchors: []string{
			"5/5 exemplary → consistently perfect square knots, proper tension, no slippage, clean throws.",
			"4/5 proficient → mostly square knots, occasional minor tension issues, rare slippage.",
			"3/5 competent → generally square knots, some tension variation, occasional slippage or granny knots.",
			"2/5 substandard → frequent non-square knots, poor tension control, significant slippage.",
			"1/5 poor → predominantly granny knots or slip knots, poor tension, frequent failures.",
		},
		focus: []string{"knot configuration", "throw direction", "tension and slippage"},
		tone:  "Describe the knot construction and tension control.",
	},
	"economy of time and motion": {
		anchors: []string{
			"5/5 exemplary → maximum efficiency, minimal unnecessary movement, smooth transitions, optimal instrument handling.",
			"4/5 proficient → mostly efficient, occasional minor inefficiencies, generally smooth workflow.",
			"3/5 competent → generally organized, some unnecessary movements, acceptable workflow with minor delays.",
			"2/5 substandard → frequent inefficiencies, noticeable unnecessary movements, workflow interruptions.",
			"1/5 poor → disorganized movements, excessive unnecessary motion, poor instrument handling, significant delays.",
		},
		focus: []string{"unnecessary motion frequency", "workflow smoothness", "instrument handling across the entire procedure"},
		tone:  "Describe the movement patterns and efficiency characteristics.",
	},
	"appropriate skin tension": {
		anchors: []string{
			"5/5 exemplary → perfect skin approximation, no gaping, no puckering, edges just touching without compression.",
			"4/5 proficient → excellent approximation, minimal gaping or puckering, appropriate tension throughout.",
			"3/5 competent → generally good approximation, some minor gaping or puckering, mostly appropriate tension.",
			"2/5 substandard → poor approximation, significant gaping or puckering, inappropriate tension.",
			"1/5 poor → very poor approximation, excessive gaping or puckering, poor tension control.",
		},
		focus: []string{"edge approximation", "gaping or puckering along the incision"},
		tone:  "Describe the approximation and tension observed.",
	},
	"suture spacing (0.5-1.0 cm)": {
		anchors: []string{
			"5/5 exemplary → consistently 0.5-1.0 cm spacing, uniform distribution, no gaps or crowding.",
			"4/5 proficient → mostly 0.5-1.0 cm spacing, occasional minor variation (±0.2 cm), generally uniform.",
			"3/5 competent → generally 0.5-1.0 cm spacing, some variation (±0.3 cm), mostly appropriate distribution.",
			"2/5 substandard → frequent spacing outside 0.5-1.0 cm range, noticeable gaps or crowding.",
			"1/5 poor → predominantly incorrect spacing, excessive gaps or crowding, poor distribution.",
		},
		focus: []string{"distance between adjacent sutures", "uniformity along the incision"},
		tone:  "Describe the spacing pattern and any gaps or crowding.",
	},
	"skin edge eversion": {
		anchors: []string{
			"5/5 exemplary → perfect eversion, skin edges rolled outward, no inversion, optimal healing position.",
			"4/5 proficient → excellent eversion, mostly rolled outward, minimal inversion, very good healing position.",
			"3/5 competent → generally good eversion, some rolling outward, occasional minor inversion.",
			"2/5 substandard → poor eversion, frequent inversion, skin edges not in optimal healing position.",
			"1/5 poor → very poor eversion, predominantly inverted edges, poor healing position.",
		},
		focus: []string{"edge position along the full length of the closure"},
		tone:  "Describe the edge position observed.",
	},
}

// buildItemPrompt creates the prompt for scoring one rubric item.
func buildItemPrompt(sutureType string, item rubric.Item, withReference bool) (prompt string) {
	technique := strings.ToLower(rubric.DisplayName(sutureType))

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert surgical educator assessing a %s suture.\n\n", technique)

	if item.Modality == rubric.ModalityStill {
		b.WriteString("The first image shows the final product of the closure.")
		if withReference {
			b.WriteString(" The second image is a reference example of the finished technique; use it for orientation only and score the first image.")
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Assess only this rubric point:\n\n%d) %s\n\n", item.Index, item.Text)
	b.WriteString("Print:\n\nrubric point number and text,\n\nscore as x/5 plus rating label (e.g., \"3/5 competent\"),\n\nbrief justification.\n\n")
	b.WriteString(ratingLegend + "\n\n")

	if item.IdealResult != "" {
		fmt.Fprintf(&b, "Ideal result: %s\n\n", item.IdealResult)
	}

	c, ok := criteria[item.Name]
	if ok {
		b.WriteString("Scoring criteria:\n\n")
		for _, anchor := range c.anchors {
			b.WriteString(anchor + "\n\n")
		}
		b.WriteString("Focus on:\n\n")
		for _, f := range c.focus {
			b.WriteString(f + ",\n\n")
		}
		b.WriteString("Keep the justification neutral, factual, and concise.\n")
		b.WriteString(c.tone + "\n")
	} else {
		b.WriteString("Keep the justification brief and descriptive. Use neutral, objective language. Describe what is observed without superlatives or heavily inflected language.\n\n")
		b.WriteString("Do not add any extra labels or commentary.\n")
	}

	prompt = b.String()
	return prompt
}

// buildSummaryPrompt creates the prompt for the summative comment.
func buildSummaryPrompt(req assessment.SummaryRequest) (prompt string) {
	technique := strings.ToLower(rubric.DisplayName(req.SutureType))

	prompt = fmt.Sprintf(`You are an expert surgical educator. Based on this assessment analysis of a %s suture, write a single, natural, narrative paragraph that provides concrete, actionable feedback.

Assessment Analysis:
%s

Write a summative comment that:
- Is natural and narrative (not mechanical or repetitive)
- Does NOT repeat the individual scores
- Uses neutral, objective language without superlatives or heavily inflected terms
- Provides concrete, actionable advice for improvement
- Focuses on the most important areas for development
- Encourages continued development

The individual rubric points provide brief score justifications. This summative comment should provide the detailed analysis, correction advice, and actionable guidance.

Start with "%s" and write a single flowing paragraph.
`, technique, assessment.Analysis(req), summaryPrefix)

	return prompt
}
