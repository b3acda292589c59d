package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

//nolint:gochecknoglobals // lookup table
var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".wmv":  "video/x-ms-wmv",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".flv":  "video/x-flv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// MimeType guesses the media type of a file from its extension.
func MimeType(path string) (mimeType string) {
	ext := strings.ToLower(filepath.Ext(path))

	mimeType, ok := mimeTypes[ext]
	if ok {
		return mimeType
	}

	mimeType = mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return mimeType
}

// mediaPart turns a local file into a request part, inline when it is small
// enough and through the Files API otherwise.
func (c *Client) mediaPart(ctx context.Context, path string) (part Part, err error) {
	var info os.FileInfo
	info, err = os.Stat(path)
	if err != nil {
		err = errors.Wrapf(err, "media file %s not found", path)
		return part, err
	}

	mimeType := MimeType(path)

	if info.Size() <= c.inlineLimit {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to read media file %s", path)
			return part, err
		}

		part = Part{InlineData: &Blob{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}}
		return part, err
	}

	var file uploadedFile
	file, err = c.uploadFile(ctx, path, info.Size(), mimeType)
	if err != nil {
		return part, err
	}

	part = Part{FileData: &FileData{MimeType: file.MimeType, FileURI: file.URI}}

	return part, err
}

// uploadFile pushes a file through the resumable upload protocol and waits
// for it to become usable. Each path is uploaded once per client.
func (c *Client) uploadFile(ctx context.Context, path string, size int64, mimeType string) (file uploadedFile, err error) {
	c.mu.Lock()
	cached, ok := c.uploads[path]
	c.mu.Unlock()
	if ok {
		file = cached
		return file, err
	}

	c.logger.Info("uploading media", slog.String("path", path), slog.Int64("bytes", size))

	// Start the upload session
	meta, err := json.Marshal(map[string]any{"file": map[string]string{"display_name": filepath.Base(path)}})
	if err != nil {
		err = errors.Wrap(err, "failed to marshal upload metadata")
		return file, err
	}

	var startReq *http.Request
	startReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/upload/v1beta/files", bytes.NewReader(meta))
	if err != nil {
		err = errors.Wrap(err, "failed to create upload request")
		return file, err
	}
	startReq.Header.Set("Content-Type", "application/json")
	startReq.Header.Set(headerGoogAPIKey, c.apiKey)
	startReq.Header.Set("X-Goog-Upload-Protocol", "resumable")
	startReq.Header.Set("X-Goog-Upload-Command", "start")
	startReq.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	startReq.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	var header http.Header
	_, header, err = c.do(c.httpClient, startReq)
	if err != nil {
		err = errors.Wrapf(err, "failed to start upload of %s", path)
		return file, err
	}

	uploadURL := header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		err = errors.Errorf("upload of %s returned no session URL", path)
		return file, err
	}

	// Send the bytes and finalize
	var f *os.File
	f, err = os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open media file %s", path)
		return file, err
	}
	defer f.Close()

	var uploadReq *http.Request
	uploadReq, err = http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, f)
	if err != nil {
		err = errors.Wrap(err, "failed to create upload request")
		return file, err
	}
	uploadReq.ContentLength = size
	uploadReq.Header.Set("X-Goog-Upload-Offset", "0")
	uploadReq.Header.Set("X-Goog-Upload-Command", "upload, finalize")

	var respBody []byte
	respBody, _, err = c.do(c.uploadClient, uploadReq)
	if err != nil {
		err = errors.Wrapf(err, "failed to upload %s", path)
		return file, err
	}

	file = parseFile(gjson.GetBytes(respBody, "file"))
	if file.URI == "" {
		err = errors.Errorf("upload of %s returned no file URI: %s", path, string(respBody))
		return file, err
	}
	if file.MimeType == "" {
		file.MimeType = mimeType
	}

	// Wait until processed
	err = c.waitForActive(ctx, file)
	if err != nil {
		return file, err
	}

	c.mu.Lock()
	c.uploads[path] = file
	c.mu.Unlock()

	return file, err
}

// waitForActive polls the file until its state is ACTIVE. A FAILED state is
// an error; running out of time only logs a warning and lets the caller
// proceed.
func (c *Client) waitForActive(ctx context.Context, file uploadedFile) (err error) {
	deadline := time.Now().Add(c.pollTimeout)
	state := file.State

	for {
		switch state {
		case fileStateActive:
			return err
		case fileStateFailed:
			err = errors.Errorf("file %s failed to process", file.Name)
			return err
		}

		if !time.Now().Before(deadline) {
			c.logger.Warn("file status check timed out, proceeding anyway",
				slog.String("file", file.Name), slog.Duration("timeout", c.pollTimeout))
			return err
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = errors.Wrap(ctx.Err(), "waiting for uploaded file")
			return err
		case <-timer.C:
		}

		state, err = c.fileState(ctx, file.Name)
		if err != nil {
			return err
		}
	}
}

// fileState fetches the current processing state of an uploaded file.
func (c *Client) fileState(ctx context.Context, name string) (state string, err error) {
	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1beta/"+name, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create file status request")
		return state, err
	}
	httpReq.Header.Set(headerGoogAPIKey, c.apiKey)

	var respBody []byte
	respBody, _, err = c.do(c.httpClient, httpReq)
	if err != nil {
		err = errors.Wrapf(err, "failed to check status of %s", name)
		return state, err
	}

	state = gjson.GetBytes(respBody, "state").String()

	return state, err
}

func parseFile(res gjson.Result) (file uploadedFile) {
	file = uploadedFile{
		Name:     res.Get("name").String(),
		URI:      res.Get("uri").String(),
		MimeType: res.Get("mimeType").String(),
		State:    res.Get("state").String(),
	}
	return file
}
