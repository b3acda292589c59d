package llm

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single piece of a turn. Exactly one field is set.
type Part struct {
	Text       string    `json:"text,omitempty"`
	InlineData *Blob     `json:"inline_data,omitempty"`
	FileData   *FileData `json:"file_data,omitempty"`
}

// Blob is media sent inline, base64 encoded.
type Blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// FileData references media previously uploaded through the Files API.
type FileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

// GenerationConfig tunes sampling.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// uploadedFile is the subset of a Files API resource the client tracks.
type uploadedFile struct {
	Name     string
	URI      string
	MimeType string
	State    string
}

const (
	fileStateActive  = "ACTIVE"
	fileStateFailed  = "FAILED"
	roleUser         = "user"
	headerGoogAPIKey = "x-goog-api-key"
)
