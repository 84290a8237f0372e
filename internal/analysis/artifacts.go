package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kdimtricp/formcheck/internal/apperr"
)

const artifactExt = ".json"

// ArtifactStore reads the per-job result files the analysis service writes
// in async mode, one <jobId>.json per job.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates dir if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve results directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &ArtifactStore{dir: abs}, nil
}

func (s *ArtifactStore) Dir() string {
	return s.dir
}

func (s *ArtifactStore) path(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || jobID == "." || jobID == ".." {
		return "", apperr.Validation("invalid job id")
	}
	return filepath.Join(s.dir, jobID+artifactExt), nil
}

// Lookup returns the raw artifact for jobID. ok is false while no artifact
// exists yet. An artifact that cannot be read or is not valid JSON is
// corrupt data.
func (s *ArtifactStore) Lookup(jobID string) (data json.RawMessage, ok bool, err error) {
	p, err := s.path(jobID)
	if err != nil {
		return nil, false, err
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, apperr.CorruptData(fmt.Errorf("reading %s: %w", p, err))
	}

	if !json.Valid(raw) {
		return nil, false, apperr.CorruptData(fmt.Errorf("%s is not valid JSON", p))
	}
	return json.RawMessage(raw), true, nil
}

// JobIDs lists the jobs that have an artifact, sorted.
func (s *ArtifactStore) JobIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list results directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != artifactExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), artifactExt))
	}
	sort.Strings(ids)
	return ids, nil
}
