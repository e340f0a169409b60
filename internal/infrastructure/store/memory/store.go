// Package memory holds process-local stores, used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
)

const storeName = "memory"

type RunStore struct {
	mu   sync.RWMutex
	runs map[string]entity.Run
}

var _ repository.RunRepository = (*RunStore)(nil)

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]entity.Run)}
}

func (s *RunStore) Create(_ context.Context, run *entity.Run) error {
	metrics.IncStoreOp(storeName, "put")

	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *RunStore) GetByID(_ context.Context, id string) (*entity.Run, error) {
	metrics.IncStoreOp(storeName, "get")

	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &run, nil
}

// List returns runs newest first.
func (s *RunStore) List(_ context.Context) ([]*entity.Run, error) {
	metrics.IncStoreOp(storeName, "list")

	runs := s.filter(func(entity.Run) bool { return true })
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// ListByStatus returns runs oldest first.
func (s *RunStore) ListByStatus(_ context.Context, status entity.RunStatus) ([]*entity.Run, error) {
	metrics.IncStoreOp(storeName, "list")

	runs := s.filter(func(r entity.Run) bool { return r.Status == status })
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	return runs, nil
}

func (s *RunStore) Update(_ context.Context, run *entity.Run) error {
	metrics.IncStoreOp(storeName, "put")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return repository.ErrNotFound
	}
	run.UpdatedAt = time.Now().UTC()
	s.runs[run.ID] = *run
	return nil
}

func (s *RunStore) UpdateStatus(_ context.Context, id string, status entity.RunStatus) error {
	metrics.IncStoreOp(storeName, "put")

	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return repository.ErrNotFound
	}
	run.UpdateStatus(status)
	s.runs[id] = run
	return nil
}

func (s *RunStore) Delete(_ context.Context, id string) error {
	metrics.IncStoreOp(storeName, "delete")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *RunStore) filter(keep func(entity.Run) bool) []*entity.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Run, 0, len(s.runs))
	for _, r := range s.runs {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	return out
}

type FileStore struct {
	mu    sync.RWMutex
	files map[string][]entity.GeneratedFile
}

var _ repository.FileRepository = (*FileStore)(nil)

func NewFileStore() *FileStore {
	return &FileStore{files: make(map[string][]entity.GeneratedFile)}
}

func (s *FileStore) SaveFiles(_ context.Context, runID string, files []entity.GeneratedFile) error {
	metrics.IncStoreOp(storeName, "put")

	cp := make([]entity.GeneratedFile, len(files))
	for i, f := range files {
		f.RunID = runID
		cp[i] = f
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[runID] = cp
	return nil
}

func (s *FileStore) GetFiles(_ context.Context, runID string) ([]entity.GeneratedFile, error) {
	metrics.IncStoreOp(storeName, "get")

	s.mu.RLock()
	defer s.mu.RUnlock()
	files, ok := s.files[runID]
	if !ok || len(files) == 0 {
		return nil, repository.ErrNotFound
	}
	return append([]entity.GeneratedFile(nil), files...), nil
}

func (s *FileStore) DeleteFiles(_ context.Context, runID string) error {
	metrics.IncStoreOp(storeName, "delete")

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, runID)
	return nil
}

// ArtifactStore keeps rendered previews in memory.
type ArtifactStore struct {
	mu       sync.RWMutex
	previews map[string]string
}

var _ repository.ArtifactStore = (*ArtifactStore)(nil)

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{previews: make(map[string]string)}
}

func (s *ArtifactStore) Put(_ context.Context, artifact entity.Artifact) error {
	metrics.IncStoreOp(storeName, "put")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[artifact.RunID] = artifact.Preview
	return nil
}

func (s *ArtifactStore) Preview(_ context.Context, runID string) (string, error) {
	metrics.IncStoreOp(storeName, "get")

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.previews[runID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return doc, nil
}

func (s *ArtifactStore) Delete(_ context.Context, runID string) error {
	metrics.IncStoreOp(storeName, "delete")

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, runID)
	return nil
}
