package llm

import (
	"strings"
	"testing"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

func TestBuildItemPromptWithCriteria(t *testing.T) {
	item := itemAt(t, rubric.VerticalMattress, 1)
	prompt := buildItemPrompt(rubric.VerticalMattress, item, false)

	expectedStrings := []string{
		"assessing a vertical mattress suture",
		"1) " + item.Text,
		ratingLegend,
		"Scoring criteria:",
		"85–95°",
		"Keep the justification neutral",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Prompt missing expected string: %s", expected)
		}
	}

	if strings.Contains(prompt, "final product") {
		t.Error("Video prompt should not mention the final-product image")
	}
}

func TestBuildItemPromptGeneric(t *testing.T) {
	item := rubric.Item{Index: 2, Name: "custom point", Text: "Custom point text", Modality: rubric.ModalityVideo}
	prompt := buildItemPrompt(rubric.Subcuticular, item, false)

	if strings.Contains(prompt, "Scoring criteria:") {
		t.Error("Generic prompt should not carry scoring anchors")
	}

	if !strings.Contains(prompt, "Do not add any extra labels or commentary.") {
		t.Error("Generic prompt missing brevity instruction")
	}

	if !strings.Contains(prompt, "2) Custom point text") {
		t.Error("Generic prompt missing item text")
	}
}

func TestBuildItemPromptStill(t *testing.T) {
	item := itemAt(t, rubric.SimpleInterrupted, 5)

	withRef := buildItemPrompt(rubric.SimpleInterrupted, item, true)
	if !strings.Contains(withRef, "final product") || !strings.Contains(withRef, "reference example") {
		t.Error("Still prompt with reference should describe both images")
	}

	withoutRef := buildItemPrompt(rubric.SimpleInterrupted, item, false)
	if strings.Contains(withoutRef, "reference example") {
		t.Error("Still prompt without reference should not mention one")
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	items := rubric.Defaults().Sets[rubric.Subcuticular].Items
	prompt := buildSummaryPrompt(assessment.SummaryRequest{
		SutureType: rubric.Subcuticular,
		Final:      scorer.Final{Score: 2.6, Label: scorer.LabelCompetent},
		Items: []assessment.ScoredItem{
			{Item: items[0], Raw: assessment.RawScore{Justification: "bites shallow"}, Adjusted: 2},
		},
	})

	expectedStrings := []string{
		"subcuticular suture",
		"Overall Performance: 2.6/5 competent",
		"Areas for Improvement:",
		"bites shallow",
		`Start with "Summative Comment:"`,
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Prompt missing expected string: %s", expected)
		}
	}
}

func TestParseItemResponse(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		score         int
		justification string
		wantErr       bool
	}{
		{
			name:          "standard three line reply",
			input:         "2) Avoids multiple forceps grasps\n4/5 proficient\nSingle grasps on most edges.",
			score:         4,
			justification: "Single grasps on most edges.",
		},
		{
			name:          "markdown and label prefix",
			input:         "**1) Needle perpendicular**\n**3/5 Competent**\n\n**Justification:** Exit angles drift.",
			score:         3,
			justification: "Exit angles drift.",
		},
		{
			name:          "justification on score line",
			input:         "5/5 exemplary - Knots square throughout.",
			score:         5,
			justification: "Knots square throughout.",
		},
		{
			name:          "no justification",
			input:         "7) Economy of motion\n2/5 substandard",
			score:         2,
			justification: noJustification,
		},
		{
			name:          "out of range score passes through",
			input:         "6/5 exemplary\nBeyond the scale.",
			score:         6,
			justification: "Beyond the scale.",
		},
		{
			name:    "fractional score",
			input:   "2.5/5 competent\nokay",
			wantErr: true,
		},
		{
			name:    "fractional score with spaces",
			input:   "Score: 1.5 / 5 poor\nbad",
			wantErr: true,
		},
		{
			name:          "score after label text",
			input:         "Score: 2/5 substandard\nEdges inverted in places.",
			score:         2,
			justification: "Edges inverted in places.",
		},
		{
			name:    "no score line",
			input:   "The video is too dark to assess.",
			wantErr: true,
		},
		{
			name:    "score without label",
			input:   "Score: 3/5\nSome text.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ParseItemResponse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !scorer.IsIntegrationError(err) {
					t.Errorf("Expected InvalidInputError, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseItemResponse failed: %v", err)
			}

			if raw.Score != tt.score {
				t.Errorf("Expected score %d, got %d", tt.score, raw.Score)
			}

			if raw.Justification != tt.justification {
				t.Errorf("Expected justification '%s', got '%s'", tt.justification, raw.Justification)
			}
		})
	}
}

func TestNormalizeSummary(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Summative Comment: Good.", "Summative Comment: Good."},
		{"**Summative Comment:** Good.", "Summative Comment: Good."},
		{"  Good.\n", "Summative Comment: Good."},
	}

	for _, tt := range tests {
		result := normalizeSummary(tt.input)
		if result != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, result)
		}
	}
}

func TestMimeType(t *testing.T) {
	tests := map[string]string{
		"clip.MP4":  "video/mp4",
		"clip.mov":  "video/quicktime",
		"clip.webm": "video/webm",
		"shot.jpeg": "image/jpeg",
		"shot.png":  "image/png",
		"shot.webp": "image/webp",
		"notes":     "application/octet-stream",
	}

	for path, expected := range tests {
		result := MimeType(path)
		if result != expected {
			t.Errorf("MimeType(%s): expected '%s', got '%s'", path, expected, result)
		}
	}
}
