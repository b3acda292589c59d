package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/nikogura/suture-assessor/pkg/scorer"
)

const itemReply = "1) Passes needle perpendicular to skin on both sides of skin\n3/5 competent\nEntry angles vary between stitches."

func geminiReply(text string) (body []byte) {
	body, _ = json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return body
}

func writeMedia(t *testing.T, name, content string) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to write media file: %v", err)
	}
	return path
}

func itemAt(t *testing.T, sutureType string, index int) (item rubric.Item) {
	t.Helper()
	set, err := rubric.Defaults().Lookup(sutureType)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	item = set.Items[index-1]
	return item
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "")

	if client.apiKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", client.apiKey)
	}

	if client.model != GeminiModel {
		t.Errorf("Expected model '%s', got '%s'", GeminiModel, client.model)
	}

	if client.endpoint != GeminiAPIEndpoint {
		t.Errorf("Expected endpoint '%s', got '%s'", GeminiAPIEndpoint, client.endpoint)
	}

	if client.inlineLimit != DefaultInlineLimit {
		t.Errorf("Expected inline limit %d, got %d", DefaultInlineLimit, client.inlineLimit)
	}

	if client.httpClient.Timeout != 120*time.Second {
		t.Errorf("Expected timeout 120s, got %v", client.httpClient.Timeout)
	}

	if client.uploadClient.Timeout != 0 {
		t.Errorf("Expected no upload timeout, got %v", client.uploadClient.Timeout)
	}

	custom := NewClient("test-key", "gemini-2.5-flash", WithEndpoint("http://localhost:9/"), WithInlineLimit(10))
	if custom.model != "gemini-2.5-flash" {
		t.Errorf("Expected model 'gemini-2.5-flash', got '%s'", custom.model)
	}
	if custom.endpoint != "http://localhost:9" {
		t.Errorf("Expected trailing slash trimmed, got '%s'", custom.endpoint)
	}
	if custom.inlineLimit != 10 {
		t.Errorf("Expected inline limit 10, got %d", custom.inlineLimit)
	}
}

func TestAssessItemVideoInline(t *testing.T) {
	video := writeMedia(t, "procedure.mp4", "fake-video")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/"+GeminiModel+":generateContent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		if r.Header.Get("x-goog-api-key") != "my-api-key" {
			t.Errorf("Expected API key 'my-api-key', got '%s'", r.Header.Get("x-goog-api-key"))
		}

		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("Missing Content-Type header")
		}

		var req GenerateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}

		parts := req.Contents[0].Parts
		if len(parts) != 2 {
			t.Errorf("Expected 2 parts (video + prompt), got %d", len(parts))
			return
		}

		if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "video/mp4" {
			t.Errorf("Expected inline video/mp4 part, got %+v", parts[0])
		}

		if !strings.Contains(parts[1].Text, "Assess only this rubric point") {
			t.Errorf("Prompt part missing rubric instruction: %s", parts[1].Text)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(geminiReply(itemReply))
	}))
	defer server.Close()

	client := NewClient("my-api-key", "")
	client.endpoint = server.URL

	raw, err := client.AssessItem(context.Background(), assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 1),
		Submission: assessment.Submission{VideoPath: video},
	})
	if err != nil {
		t.Fatalf("AssessItem failed: %v", err)
	}

	if raw.Score != 3 {
		t.Errorf("Expected score 3, got %d", raw.Score)
	}

	if raw.Justification != "Entry angles vary between stitches." {
		t.Errorf("Unexpected justification: %s", raw.Justification)
	}

	if raw.Response != itemReply {
		t.Errorf("Expected raw response to be kept, got %q", raw.Response)
	}
}

func TestAssessItemStillWithReference(t *testing.T) {
	image := writeMedia(t, "final.png", "final")
	ref := writeMedia(t, "ref.jpg", "reference")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		parts := req.Contents[0].Parts
		if len(parts) != 3 {
			t.Errorf("Expected 3 parts (image + reference + prompt), got %d", len(parts))
			return
		}

		if parts[0].InlineData.MimeType != "image/png" {
			t.Errorf("Expected first image/png, got %s", parts[0].InlineData.MimeType)
		}

		if parts[1].InlineData.MimeType != "image/jpeg" {
			t.Errorf("Expected reference image/jpeg, got %s", parts[1].InlineData.MimeType)
		}

		if !strings.Contains(parts[2].Text, "reference example") {
			t.Error("Prompt should mention the reference image")
		}

		_, _ = w.Write(geminiReply("4) Skin tension\n4/5 proficient\nEdges approximated without puckering."))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	raw, err := client.AssessItem(context.Background(), assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 4),
		Submission: assessment.Submission{ImagePath: image, RefImagePath: ref},
	})
	if err != nil {
		t.Fatalf("AssessItem failed: %v", err)
	}

	if raw.Score != 4 {
		t.Errorf("Expected score 4, got %d", raw.Score)
	}
}

func TestAssessItemMissingMedia(t *testing.T) {
	client := NewClient("test-key", "")
	client.endpoint = "http://127.0.0.1:1"

	_, err := client.AssessItem(context.Background(), assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 4),
		Submission: assessment.Submission{VideoPath: "procedure.mp4"},
	})
	if err == nil {
		t.Fatal("Expected error for missing final image, got nil")
	}

	if !strings.Contains(err.Error(), "final-product image") {
		t.Errorf("Error should mention the missing image: %v", err)
	}

	_, err = client.AssessItem(context.Background(), assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 1),
		Submission: assessment.Submission{VideoPath: filepath.Join(t.TempDir(), "absent.mp4")},
	})
	if err == nil {
		t.Fatal("Expected error for absent video file, got nil")
	}
}

func TestAssessItemNoScoreLine(t *testing.T) {
	video := writeMedia(t, "procedure.mp4", "fake-video")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiReply("I cannot assess this video."))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.AssessItem(context.Background(), assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 1),
		Submission: assessment.Submission{VideoPath: video},
	})
	if err == nil {
		t.Fatal("Expected error for reply without a score, got nil")
	}

	if !scorer.IsIntegrationError(err) {
		t.Errorf("Expected integration error, got %v", err)
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.sendRequest(context.Background(), []Part{{Text: "hello"}})
	if err == nil {
		t.Fatal("Expected error for bad request, got nil")
	}

	if !strings.Contains(err.Error(), "400") {
		t.Errorf("Error should mention status code 400: %v", err)
	}

	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("Error should carry the API message: %v", err)
	}
}

func TestEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.sendRequest(context.Background(), []Part{{Text: "hello"}})
	if err == nil {
		t.Fatal("Expected error for empty candidates, got nil")
	}

	if !strings.Contains(err.Error(), "no content") {
		t.Errorf("Error should mention 'no content': %v", err)
	}
}

func TestBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.sendRequest(context.Background(), []Part{{Text: "hello"}})
	if err == nil {
		t.Fatal("Expected error for blocked prompt, got nil")
	}

	if !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("Error should mention block reason: %v", err)
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.sendRequest(context.Background(), []Part{{Text: "hello"}})
	if err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

func TestMultiPartText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "3/5 "}, {"text": "competent"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	text, err := client.sendRequest(context.Background(), []Part{{Text: "hello"}})
	if err != nil {
		t.Fatalf("sendRequest failed: %v", err)
	}

	if text != "3/5 competent" {
		t.Errorf("Expected parts joined, got '%s'", text)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.sendRequest(ctx, []Part{{Text: "hello"}})
	if err == nil {
		t.Error("Expected error for cancelled context, got nil")
	}
}

// fakeFilesAPI serves the resumable upload, file status and generateContent
// endpoints.
type fakeFilesAPI struct {
	mu          sync.Mutex
	uploads     int
	statusHits  int
	finalState  string
	uploadDelay time.Duration
	server      *httptest.Server
	t           *testing.T
}

func newFakeFilesAPI(t *testing.T, finalState string) (api *fakeFilesAPI) {
	api = &fakeFilesAPI{t: t, finalState: finalState}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	return api
}

func (f *fakeFilesAPI) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/upload/v1beta/files":
		if r.Header.Get("X-Goog-Upload-Protocol") != "resumable" {
			f.t.Errorf("Expected resumable protocol, got '%s'", r.Header.Get("X-Goog-Upload-Protocol"))
		}
		if r.Header.Get("X-Goog-Upload-Header-Content-Type") != "video/mp4" {
			f.t.Errorf("Expected content type video/mp4, got '%s'", r.Header.Get("X-Goog-Upload-Header-Content-Type"))
		}
		w.Header().Set("X-Goog-Upload-URL", f.server.URL+"/session/1")
		w.WriteHeader(http.StatusOK)

	case r.URL.Path == "/session/1":
		body, _ := io.ReadAll(r.Body)
		if string(body) != "a-large-video" {
			f.t.Errorf("Unexpected upload body: %s", string(body))
		}
		if r.Header.Get("X-Goog-Upload-Command") != "upload, finalize" {
			f.t.Errorf("Expected finalize command, got '%s'", r.Header.Get("X-Goog-Upload-Command"))
		}
		time.Sleep(f.uploadDelay)
		f.mu.Lock()
		f.uploads++
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"file": {"name": "files/abc", "uri": "https://files.example/abc", "mimeType": "video/mp4", "state": "PROCESSING"}}`))

	case r.URL.Path == "/v1beta/files/abc":
		f.mu.Lock()
		f.statusHits++
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"name": "files/abc", "state": "` + f.finalState + `"}`))

	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		var req GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		part := req.Contents[0].Parts[0]
		if part.FileData == nil || part.FileData.FileURI != "https://files.example/abc" {
			f.t.Errorf("Expected file_data reference, got %+v", part)
		}
		_, _ = w.Write(geminiReply(itemReply))

	default:
		f.t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestLargeMediaUpload(t *testing.T) {
	api := newFakeFilesAPI(t, fileStateActive)
	defer api.server.Close()

	video := writeMedia(t, "procedure.mp4", "a-large-video")

	client := NewClient("test-key", "", WithInlineLimit(4), WithPolling(10*time.Millisecond, time.Second))
	client.endpoint = api.server.URL

	req := assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 1),
		Submission: assessment.Submission{VideoPath: video},
	}

	for range 2 {
		raw, err := client.AssessItem(context.Background(), req)
		if err != nil {
			t.Fatalf("AssessItem failed: %v", err)
		}
		if raw.Score != 3 {
			t.Errorf("Expected score 3, got %d", raw.Score)
		}
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if api.uploads != 1 {
		t.Errorf("Expected the video to be uploaded once, got %d uploads", api.uploads)
	}

	if api.statusHits != 1 {
		t.Errorf("Expected one status poll, got %d", api.statusHits)
	}
}

func TestLargeMediaUploadOutlastsRequestTimeout(t *testing.T) {
	api := newFakeFilesAPI(t, fileStateActive)
	api.uploadDelay = 300 * time.Millisecond
	defer api.server.Close()

	video := writeMedia(t, "procedure.mp4", "a-large-video")

	client := NewClient("test-key", "",
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
		WithInlineLimit(4),
		WithPolling(10*time.Millisecond, time.Second),
	)
	client.endpoint = api.server.URL

	req := assessment.ItemRequest{
		SutureType: rubric.SimpleInterrupted,
		Item:       itemAt(t, rubric.SimpleInterrupted, 1),
		Submission: assessment.Submission{VideoPath: video},
	}

	raw, err := client.AssessItem(context.Background(), req)
	if err != nil {
		t.Fatalf("AssessItem failed: %v", err)
	}

	if raw.Score != 3 {
		t.Errorf("Expected score 3, got %d", raw.Score)
	}
}

func TestLargeMediaUploadFailed(t *testing.T) {
	api := newFakeFilesAPI(t, fileStateFailed)
	defer api.server.Close()

	video := writeMedia(t, "procedure.mp4", "a-large-video")

	client := NewClient("test-key", "", WithInlineLimit(4), WithPolling(10*time.Millisecond, time.Second))
	client.endpoint = api.server.URL

	_, err := client.mediaPart(context.Background(), video)
	if err == nil {
		t.Fatal("Expected error for FAILED file, got nil")
	}

	if !strings.Contains(err.Error(), "failed to process") {
		t.Errorf("Error should mention processing failure: %v", err)
	}
}

func TestLargeMediaUploadTimeout(t *testing.T) {
	api := newFakeFilesAPI(t, "PROCESSING")
	defer api.server.Close()

	video := writeMedia(t, "procedure.mp4", "a-large-video")

	client := NewClient("test-key", "", WithInlineLimit(4), WithPolling(10*time.Millisecond, 50*time.Millisecond))
	client.endpoint = api.server.URL

	part, err := client.mediaPart(context.Background(), video)
	if err != nil {
		t.Fatalf("Expected timeout to proceed, got error: %v", err)
	}

	if part.FileData == nil {
		t.Fatal("Expected a file_data part")
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if api.statusHits < 1 {
		t.Error("Expected at least one status poll")
	}
}

func TestSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, "Overall Performance: 3.0/5 competent") {
			t.Errorf("Summary prompt missing analysis: %s", prompt)
		}

		_, _ = w.Write(geminiReply("**Summative Comment:** Practice consistent needle angles."))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	comment, err := client.Summarize(context.Background(), assessment.SummaryRequest{
		SutureType: rubric.SimpleInterrupted,
		Final:      scorer.Final{Score: 3.0, Label: scorer.LabelCompetent},
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if comment != "Summative Comment: Practice consistent needle angles." {
		t.Errorf("Unexpected comment: %s", comment)
	}
}

func TestSummarizeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.endpoint = server.URL

	_, err := client.Summarize(context.Background(), assessment.SummaryRequest{SutureType: rubric.Subcuticular})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Error should carry the API message: %v", err)
	}
}
