package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/pkg/errors"
)

// RecordSuffix marks the JSON record of a run.
const RecordSuffix = ".assessment.json"

// WriteRecord writes the run as indented JSON.
func WriteRecord(path string, run assessment.Run) (err error) {
	// Ensure output directory exists
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", dir)
		return err
	}

	var data []byte
	data, err = json.MarshalIndent(run, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal assessment record")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write assessment record: %s", path)
		return err
	}

	return err
}

// ReadRecord loads a run written by WriteRecord.
func ReadRecord(path string) (run assessment.Run, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read assessment record: %s", path)
		return run, err
	}

	err = json.Unmarshal(data, &run)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse assessment record: %s", path)
		return run, err
	}

	return run, err
}
