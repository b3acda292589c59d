// Package history indexes past assessment records and reports how the
// observed score distribution compares to the target curve.
package history

import (
	"time"

	"github.com/google/uuid"
)

// IndexVersion is written into every index file.
const IndexVersion = "1.0.0"

// Index lists every assessment record found under an output directory.
type Index struct {
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   string    `json:"version"`
}

// Entry is the indexed summary of one run.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	SutureType  string    `json:"suture_type"`
	Video       string    `json:"video"`
	CompletedAt time.Time `json:"completed_at"`
	Raw         []int     `json:"raw"`
	Adjusted    []int     `json:"adjusted"`
	FinalScore  float64   `json:"final_score"`
	FinalLabel  string    `json:"final_label"`
	TiePolicy   string    `json:"tie_policy"`
	Path        string    `json:"path"`
}
