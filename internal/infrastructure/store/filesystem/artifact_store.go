package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
	"uistudio/internal/infrastructure/metrics"
)

const (
	storeName    = "filesystem"
	metadataFile = "metadata.json"
	previewFile  = "preview.html"
	filesDir     = "files"
)

// ArtifactStore keeps one directory per run under basePath:
//
//	<run>/metadata.json
//	<run>/preview.html
//	<run>/files/<path>
type ArtifactStore struct {
	basePath string
}

var _ repository.ArtifactStore = (*ArtifactStore)(nil)

func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	info, err := os.Stat(basePath)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(basePath, 0o755); mkErr != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", basePath, mkErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check directory %s: %w", basePath, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %s exists but is not a directory", basePath)
	}

	return &ArtifactStore{basePath: basePath}, nil
}

func (s *ArtifactStore) BasePath() string { return s.basePath }

type metadata struct {
	RunID     string                 `json:"run_id"`
	TechStack entity.TechStack       `json:"tech_stack"`
	CreatedAt time.Time              `json:"created_at"`
	Files     []entity.GeneratedFile `json:"files"`
}

func (s *ArtifactStore) Put(_ context.Context, artifact entity.Artifact) error {
	metrics.IncStoreOp(storeName, "put")

	runDir, err := s.runDir(artifact.RunID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(runDir, filesDir), 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	meta := metadata{
		RunID:     artifact.RunID,
		TechStack: artifact.TechStack,
		CreatedAt: artifact.CreatedAt,
	}
	for _, file := range artifact.Files {
		target, err := within(filepath.Join(runDir, filesDir), file.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", file.Path, err)
		}
		if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", file.Path, err)
		}
		file.Content = ""
		meta.Files = append(meta.Files, file)
	}

	if err := os.WriteFile(filepath.Join(runDir, previewFile), []byte(artifact.Preview), 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// Files reads back the files stored for runID.
func (s *ArtifactStore) Files(_ context.Context, runID string) ([]entity.GeneratedFile, error) {
	metrics.IncStoreOp(storeName, "get")

	runDir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(runDir, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	for i, file := range meta.Files {
		target, err := within(filepath.Join(runDir, filesDir), file.Path)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(target)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file.Path, err)
		}
		meta.Files[i].Content = string(content)
		meta.Files[i].RunID = runID
	}
	return meta.Files, nil
}

func (s *ArtifactStore) Preview(_ context.Context, runID string) (string, error) {
	metrics.IncStoreOp(storeName, "get")

	runDir, err := s.runDir(runID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(runDir, previewFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to read preview: %w", err)
	}
	return string(data), nil
}

// List returns the ids of every stored run.
func (s *ArtifactStore) List(_ context.Context) ([]string, error) {
	metrics.IncStoreOp(storeName, "list")

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.basePath, e.Name(), metadataFile)); err == nil {
			runs = append(runs, e.Name())
		}
	}
	return runs, nil
}

func (s *ArtifactStore) Delete(_ context.Context, runID string) error {
	metrics.IncStoreOp(storeName, "delete")

	runDir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to delete run directory: %w", err)
	}
	return nil
}

func (s *ArtifactStore) runDir(runID string) (string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" || strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	return filepath.Join(s.basePath, runID), nil
}

// within joins rel onto root and refuses paths that escape it.
func within(root, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path %q", rel)
	}
	return filepath.Join(root, clean), nil
}
