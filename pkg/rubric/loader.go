// Package rubric holds the per-technique rubric sets the assessment runs
// against.
package rubric

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Load returns the built-in rubric sets, overridden or extended by the sets
// in the YAML file at path. An empty path returns the defaults.
func Load(path string) (catalog Catalog, err error) {
	catalog = Defaults()
	if path == "" {
		return catalog, err
	}

	// Read file
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read rubric file: %s", path)
		return catalog, err
	}

	// Parse YAML
	var file File
	err = yaml.Unmarshal(fileData, &file)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse rubric YAML: %s", path)
		return catalog, err
	}

	for _, set := range file.Rubrics {
		err = set.Validate()
		if err != nil {
			err = errors.Wrapf(err, "rubric validation failed: %s", path)
			return catalog, err
		}
		catalog.Sets[set.SutureType] = set
	}

	return catalog, err
}

// Validate checks that the set is well-formed.
func (s *Set) Validate() (err error) {
	if s.SutureType == "" {
		err = errors.New("rubric set missing suture_type")
		return err
	}

	if len(s.Items) == 0 {
		err = errors.Errorf("rubric set %s has no items", s.SutureType)
		return err
	}

	for i, item := range s.Items {
		if item.Index != i+1 {
			err = errors.Errorf("rubric set %s: item at position %d has index %d, want %d", s.SutureType, i, item.Index, i+1)
			return err
		}
		if strings.TrimSpace(item.Text) == "" {
			err = errors.Errorf("rubric set %s: item %d missing text", s.SutureType, item.Index)
			return err
		}
		if item.Modality != ModalityVideo && item.Modality != ModalityStill {
			err = errors.Errorf("rubric set %s: item %d has modality %q, must be %s or %s", s.SutureType, item.Index, item.Modality, ModalityVideo, ModalityStill)
			return err
		}
	}

	return err
}

// Lookup returns the rubric set for a suture type.
func (c Catalog) Lookup(sutureType string) (set Set, err error) {
	set, ok := c.Sets[sutureType]
	if !ok {
		err = errors.Errorf("suture type %q is unknown or not supported (known: %s)", sutureType, strings.Join(c.Types(), ", "))
		return set, err
	}
	return set, err
}

// Types returns the known suture types, sorted.
func (c Catalog) Types() (types []string) {
	types = make([]string, 0, len(c.Sets))
	for t := range c.Sets {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DisplayName turns a suture type key into a title, e.g.
// "simple_interrupted" becomes "Simple Interrupted".
func DisplayName(sutureType string) (name string) {
	titleCaser := cases.Title(language.English)
	name = titleCaser.String(strings.ReplaceAll(sutureType, "_", " "))
	return name
}

// ItemName returns the item's short name, falling back to its text.
func (i Item) ItemName() (name string) {
	name = i.Name
	if name == "" {
		name = strings.ToLower(i.Text)
	}
	return name
}
