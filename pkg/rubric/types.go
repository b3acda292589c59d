package rubric

// Modality says which media an item is judged from.
type Modality string

const (
	// ModalityVideo items are judged from the procedure video.
	ModalityVideo Modality = "VIDEO"
	// ModalityStill items are judged from the final-product image.
	ModalityStill Modality = "STILL"
)

// Catalog holds every rubric set keyed by suture type.
type Catalog struct {
	Sets map[string]Set `yaml:"-" json:"sets"`
}

// File is the on-disk YAML layout of rubric overrides.
type File struct {
	Rubrics []Set `yaml:"rubrics"`
}

// Set is the ordered rubric for one suture technique.
type Set struct {
	SutureType string `yaml:"suture_type" json:"suture_type"`
	Title      string `yaml:"title" json:"title"`
	Items      []Item `yaml:"items" json:"items"`
}

// Item is one assessed criterion.
type Item struct {
	Index       int      `yaml:"index" json:"index"` // 1-based
	Name        string   `yaml:"name" json:"name"`   // short form used in summaries
	Text        string   `yaml:"text" json:"text"`
	IdealResult string   `yaml:"ideal_result" json:"ideal_result"`
	Modality    Modality `yaml:"modality" json:"modality"`
}
