package history

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/report"
	"github.com/pkg/errors"
)

// IndexFile is the index name inside the output directory.
const IndexFile = ".assessment-index.json"

// Indexer indexes assessment records.
type Indexer struct {
	outputDir string // where reports are written
	indexPath string // <outputDir>/.assessment-index.json
	logger    *slog.Logger
	now       func() time.Time
}

// NewIndexer creates a new indexer instance. A nil logger discards output.
func NewIndexer(outputDir string, logger *slog.Logger) (indexer *Indexer, err error) {
	if outputDir == "" {
		err = errors.New("output directory is required")
		return indexer, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexer = &Indexer{
		outputDir: outputDir,
		indexPath: filepath.Join(outputDir, IndexFile),
		logger:    logger,
		now:       time.Now,
	}

	return indexer, err
}

// Path returns the index file location.
func (idx *Indexer) Path() (path string) {
	path = idx.indexPath
	return path
}

// Index scans all assessment records and rewrites the index. Unreadable
// records are skipped with a warning.
func (idx *Indexer) Index(ctx context.Context) (count int, err error) {
	entries := []Entry{}

	walkErr := filepath.WalkDir(idx.outputDir, func(path string, d fs.DirEntry, walkErr error) (walkFuncErr error) {
		if walkErr != nil {
			walkFuncErr = walkErr
			return walkFuncErr
		}

		walkFuncErr = ctx.Err()
		if walkFuncErr != nil {
			return walkFuncErr
		}

		// Skip if not a record
		if d.IsDir() || !strings.HasSuffix(d.Name(), report.RecordSuffix) {
			return walkFuncErr
		}

		run, readErr := report.ReadRecord(path)
		if readErr != nil {
			idx.logger.Warn("skipping unreadable assessment record", slog.String("path", path), slog.Any("error", readErr))
			return walkFuncErr
		}

		entries = append(entries, entryFor(run, path))
		return walkFuncErr
	})
	if walkErr != nil {
		err = errors.Wrap(walkErr, "failed to walk output directory")
		return count, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompletedAt.Before(entries[j].CompletedAt)
	})

	index := Index{
		Entries:   entries,
		UpdatedAt: idx.now(),
		Version:   IndexVersion,
	}

	err = idx.writeIndex(index)
	if err != nil {
		err = errors.Wrap(err, "failed to write index")
		return count, err
	}

	count = len(entries)

	return count, err
}

func entryFor(run assessment.Run, path string) (entry Entry) {
	entry = Entry{
		ID:          run.ID,
		SutureType:  run.SutureType,
		Video:       filepath.Base(run.Submission.VideoPath),
		CompletedAt: run.CompletedAt,
		Raw:         run.RawScores(),
		Adjusted:    run.AdjustedScores(),
		FinalScore:  run.Final.Score,
		FinalLabel:  string(run.Final.Label),
		TiePolicy:   string(run.TiePolicy),
		Path:        path,
	}
	return entry
}

func (idx *Indexer) writeIndex(index Index) (err error) {
	var data []byte
	data, err = json.MarshalIndent(index, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal index")
		return err
	}

	err = os.WriteFile(idx.indexPath, data, 0600)
	if err != nil {
		err = errors.Wrap(err, "failed to write index file")
		return err
	}

	return err
}

// LoadIndex loads the existing index from disk. A missing index is empty.
func (idx *Indexer) LoadIndex() (index Index, err error) {
	var data []byte
	data, err = os.ReadFile(idx.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			index = Index{
				Entries: []Entry{},
				Version: IndexVersion,
			}
			err = nil
			return index, err
		}
		err = errors.Wrap(err, "failed to read index file")
		return index, err
	}

	err = json.Unmarshal(data, &index)
	if err != nil {
		err = errors.Wrap(err, "failed to parse index JSON")
		return index, err
	}

	return index, err
}
