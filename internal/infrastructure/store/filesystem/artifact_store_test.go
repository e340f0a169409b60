package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

func TestArtifactStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewArtifactStore(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)

	artifact := entity.Artifact{
		RunID:     "run-1",
		TechStack: entity.StackNextJS,
		Files: []entity.GeneratedFile{
			{Path: "app/page.tsx", Content: "export default function Page() {}", Language: "tsx"},
		},
		Preview:   "<!DOCTYPE html><html></html>",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Put(ctx, artifact))

	raw, err := os.ReadFile(filepath.Join(store.BasePath(), "run-1", "files", "app", "page.tsx"))
	require.NoError(t, err)
	assert.Equal(t, artifact.Files[0].Content, string(raw))

	files, err := store.Files(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "app/page.tsx", files[0].Path)
	assert.Equal(t, artifact.Files[0].Content, files[0].Content)
	assert.Equal(t, "run-1", files[0].RunID)

	doc, err := store.Preview(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, artifact.Preview, doc)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)

	require.NoError(t, store.Delete(ctx, "run-1"))
	_, err = store.Preview(ctx, "run-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Files(ctx, "run-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArtifactStoreRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(ctx, entity.Artifact{RunID: "run-1", Files: []entity.GeneratedFile{{Path: "../../etc/passwd"}}})
	assert.Error(t, err)

	err = store.Put(ctx, entity.Artifact{RunID: "../run"})
	assert.Error(t, err)
}

func TestNewArtifactStoreRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewArtifactStore(path)
	assert.Error(t, err)
}
