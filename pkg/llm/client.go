package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	// GeminiAPIEndpoint is the Generative Language API base URL.
	GeminiAPIEndpoint = "https://generativelanguage.googleapis.com"
	// GeminiModel is the default assessment model.
	GeminiModel = "gemini-2.5-pro"
	// DefaultInlineLimit is the largest media file sent inline (20 MiB).
	DefaultInlineLimit int64 = 20 << 20
	// DefaultPollInterval is how often an uploaded file's state is checked.
	DefaultPollInterval = 2 * time.Second
	// DefaultPollTimeout bounds the wait for an uploaded file to become ACTIVE.
	DefaultPollTimeout = 120 * time.Second
)

// Client represents a Gemini API client.
type Client struct {
	apiKey       string
	model        string
	httpClient   *http.Client
	uploadClient *http.Client // no overall timeout; bounded by the context
	endpoint     string
	inlineLimit  int64
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	uploads map[string]uploadedFile // keyed by local path
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithHTTPClient overrides the HTTP client. Media uploads reuse its
// transport but not its timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
			c.uploadClient = &http.Client{Transport: httpClient.Transport}
		}
	}
}

// WithInlineLimit sets the size above which media goes through the Files API.
func WithInlineLimit(limit int64) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.inlineLimit = limit
		}
	}
}

// WithPolling sets the upload state polling interval and timeout.
func WithPolling(interval, timeout time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
		if timeout > 0 {
			c.pollTimeout = timeout
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Gemini API client.
func NewClient(apiKey, model string, opts ...ClientOption) (client *Client) {
	if model == "" {
		model = GeminiModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: GeminiAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		uploadClient: &http.Client{},
		inlineLimit:  DefaultInlineLimit,
		pollInterval: DefaultPollInterval,
		pollTimeout:  DefaultPollTimeout,
		logger:       slog.New(slog.DiscardHandler),
		uploads:      make(map[string]uploadedFile),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Model returns the model name requests are sent to.
func (c *Client) Model() (model string) {
	model = c.model
	return model
}

// sendRequest sends a generateContent request and returns the concatenated
// text of the first candidate.
func (c *Client) sendRequest(ctx context.Context, parts []Part) (responseText string, err error) {
	// Build request
	genReq := GenerateRequest{
		Contents: []Content{
			{
				Role:  roleUser,
				Parts: parts,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(genReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, err
	}

	// Create HTTP request
	url := c.endpoint + "/v1beta/models/" + c.model + ":generateContent"

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, err
	}

	// Set headers
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerGoogAPIKey, c.apiKey)

	var respBody []byte
	respBody, _, err = c.do(c.httpClient, httpReq)
	if err != nil {
		return responseText, err
	}

	if !gjson.ValidBytes(respBody) {
		err = errors.Errorf("failed to parse Gemini response: %s", string(respBody))
		return responseText, err
	}

	// Extract text content
	var texts []string
	for _, text := range gjson.GetBytes(respBody, "candidates.0.content.parts.#.text").Array() {
		texts = append(texts, text.String())
	}

	if len(texts) == 0 {
		reason := gjson.GetBytes(respBody, "promptFeedback.blockReason").String()
		if reason != "" {
			err = errors.Errorf("Gemini blocked the prompt: %s", reason)
			return responseText, err
		}
		err = errors.New("no content in Gemini response")
		return responseText, err
	}

	responseText = strings.TrimSpace(strings.Join(texts, ""))

	return responseText, err
}

// do sends the request with httpClient and returns the body of a 2xx
// response. Any other status becomes an error carrying the API's error
// message.
func (c *Client) do(httpClient *http.Client, httpReq *http.Request) (respBody []byte, header http.Header, err error) {
	var resp *http.Response
	resp, err = httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return respBody, header, err
	}
	defer resp.Body.Close()

	// Read response body
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return respBody, header, err
	}

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = string(respBody)
		}
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, msg)
		return respBody, header, err
	}

	header = resp.Header

	return respBody, header, err
}
