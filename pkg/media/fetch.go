// Package media resolves submission media given as local paths or URLs.
package media

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/pkg/errors"
)

// Fetcher downloads remote media into a working directory.
type Fetcher struct {
	dir        string
	httpClient *http.Client
}

// NewFetcher creates a fetcher that stores downloads under dir.
func NewFetcher(dir string) (fetcher *Fetcher) {
	fetcher = &Fetcher{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	return fetcher
}

// Localize replaces every URL in the submission with a downloaded copy and
// checks that local files exist.
func (f *Fetcher) Localize(ctx context.Context, sub assessment.Submission) (local assessment.Submission, err error) {
	local = sub

	local.VideoPath, err = f.Fetch(ctx, sub.VideoPath)
	if err != nil {
		return local, err
	}

	local.ImagePath, err = f.Fetch(ctx, sub.ImagePath)
	if err != nil {
		return local, err
	}

	local.RefImagePath, err = f.Fetch(ctx, sub.RefImagePath)
	if err != nil {
		return local, err
	}

	return local, err
}

// Fetch returns a local path for input. URLs are downloaded; file paths
// must exist and be non-empty. An empty input is returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, input string) (localPath string, err error) {
	if input == "" {
		return localPath, err
	}

	// Check if input is a URL
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		localPath, err = f.fetchFromURL(ctx, parsedURL)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch media from URL: %s", input)
			return localPath, err
		}
		return localPath, err
	}

	// It's a file path - check it on disk
	err = checkFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to use media file: %s", input)
		return localPath, err
	}
	localPath = input

	return localPath, err
}

func checkFile(p string) (err error) {
	var info os.FileInfo
	info, err = os.Stat(p)
	if err != nil {
		err = errors.Wrapf(err, "failed to stat file: %s", p)
		return err
	}

	if info.IsDir() {
		err = errors.New("path is a directory")
		return err
	}

	if info.Size() == 0 {
		err = errors.New("file is empty")
		return err
	}

	return err
}

// fetchFromURL streams the media into the working directory.
func (f *Fetcher) fetchFromURL(ctx context.Context, u *url.URL) (localPath string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return localPath, err
	}

	req.Header.Set("User-Agent", "suture-assessor/1.0")

	var resp *http.Response
	resp, err = f.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return localPath, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return localPath, err
	}

	err = os.MkdirAll(f.dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create download directory: %s", f.dir)
		return localPath, err
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "media"
	}

	var out *os.File
	out, err = os.CreateTemp(f.dir, "*-"+name)
	if err != nil {
		err = errors.Wrap(err, "failed to create download file")
		return localPath, err
	}

	var written int64
	written, err = io.Copy(out, resp.Body)
	closeErr := out.Close()

	switch {
	case err != nil:
		err = errors.Wrap(err, "failed to download media")
	case closeErr != nil:
		err = errors.Wrap(closeErr, "failed to write download file")
	case written == 0:
		err = errors.New("downloaded media is empty")
	}

	if err != nil {
		_ = os.Remove(out.Name())
		return localPath, err
	}

	localPath = filepath.Clean(out.Name())

	return localPath, err
}
