package assessment

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest lists the submissions of a batch run.
type Manifest struct {
	Submissions []Submission `yaml:"submissions"`
}

// LoadManifest reads a YAML batch manifest. Relative media paths are
// resolved against the manifest's directory; URLs are kept as given.
func LoadManifest(path string) (subs []Submission, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read manifest: %s", path)
		return subs, err
	}

	var manifest Manifest
	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse manifest YAML: %s", path)
		return subs, err
	}

	if len(manifest.Submissions) == 0 {
		err = errors.Errorf("manifest %s lists no submissions", path)
		return subs, err
	}

	base := filepath.Dir(path)
	for i, sub := range manifest.Submissions {
		if sub.SutureType == "" || sub.VideoPath == "" {
			err = errors.Errorf("manifest entry %d needs suture_type and video", i+1)
			return subs, err
		}
		sub.VideoPath = resolve(base, sub.VideoPath)
		sub.ImagePath = resolve(base, sub.ImagePath)
		sub.RefImagePath = resolve(base, sub.RefImagePath)
		subs = append(subs, sub)
	}

	return subs, err
}

func resolve(base, path string) (resolved string) {
	if path == "" || filepath.IsAbs(path) || isURL(path) {
		resolved = path
		return resolved
	}
	resolved = filepath.Join(base, path)
	return resolved
}

func isURL(path string) (ok bool) {
	ok = strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
	return ok
}
