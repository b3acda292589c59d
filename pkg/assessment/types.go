// Package assessment runs a submission through a rubric: an injected
// Assessor scores each item, the raw scores are fitted to the grading curve,
// and the run is summarized.
package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

// Assessor scores one rubric item. Implementations must be safe for
// concurrent use when batches run in parallel.
type Assessor interface {
	AssessItem(ctx context.Context, req ItemRequest) (raw RawScore, err error)
}

// SummaryWriter produces the narrative summative comment for a run.
type SummaryWriter interface {
	Summarize(ctx context.Context, req SummaryRequest) (comment string, err error)
}

// Submission is the media for one assessment.
type Submission struct {
	SutureType   string `yaml:"suture_type" json:"suture_type"`
	VideoPath    string `yaml:"video" json:"video_path"`
	ImagePath    string `yaml:"image" json:"image_path"`
	RefImagePath string `yaml:"ref_image,omitempty" json:"ref_image_path,omitempty"`
}

// ItemRequest asks the Assessor to score a single item.
type ItemRequest struct {
	SutureType string
	Item       rubric.Item
	Submission Submission
}

// RawScore is the Assessor's unadjusted rating for one item.
type RawScore struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
	Response      string `json:"response,omitempty"` // unparsed model reply
}

// ScoredItem pairs a rubric item with its raw and adjusted scores.
type ScoredItem struct {
	Item          rubric.Item  `json:"item"`
	Raw           RawScore     `json:"raw"`
	Adjusted      int          `json:"adjusted"`
	AdjustedLabel scorer.Label `json:"adjusted_label"`
}

// SummaryRequest carries what a SummaryWriter needs.
type SummaryRequest struct {
	SutureType string
	Items      []ScoredItem
	Final      scorer.Final
}

// Run is one finished assessment.
type Run struct {
	ID           uuid.UUID        `json:"id"`
	SutureType   string           `json:"suture_type"`
	Title        string           `json:"title"`
	Submission   Submission       `json:"submission"`
	Items        []ScoredItem     `json:"items"`
	Final        scorer.Final     `json:"final"`
	Summary      string           `json:"summary"`
	Distribution map[int]float64  `json:"distribution"`
	TiePolicy    scorer.TiePolicy `json:"tie_policy"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  time.Time        `json:"completed_at"`
}

// RawScores returns the raw score of every item in order.
func (r Run) RawScores() (scores []int) {
	scores = make([]int, len(r.Items))
	for i, item := range r.Items {
		scores[i] = item.Raw.Score
	}
	return scores
}

// AdjustedScores returns the adjusted score of every item in order.
func (r Run) AdjustedScores() (scores []int) {
	scores = make([]int, len(r.Items))
	for i, item := range r.Items {
		scores[i] = item.Adjusted
	}
	return scores
}
