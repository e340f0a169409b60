package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/domain/entity"
	"uistudio/internal/domain/repository"
)

func newRun(prompt string) *entity.Run {
	return entity.NewRun(entity.Request{
		Config: entity.GenerationConfig{TechStack: entity.StackHTML},
		Prompt: prompt,
	})
}

func TestRunStore(t *testing.T) {
	ctx := context.Background()
	s := NewRunStore()

	first := newRun("first landing page")
	require.NoError(t, s.Create(ctx, first))
	time.Sleep(time.Millisecond)
	second := newRun("second landing page")
	require.NoError(t, s.Create(ctx, second))

	got, err := s.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first landing page", got.Title)

	got.Progress = 50
	got.UpdateStatus(entity.RunStatusRunning)
	require.NoError(t, s.Update(ctx, got))

	running, err := s.ListByStatus(ctx, entity.RunStatusRunning)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, 50, running[0].Progress)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	require.NoError(t, s.UpdateStatus(ctx, second.ID, entity.RunStatusCanceled))
	got, err = s.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCanceled, got.Status)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, first.ID), repository.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, first), repository.ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", entity.RunStatusFailed), repository.ErrNotFound)
}

func TestRunStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewRunStore()
	run := newRun("a page for copies")
	require.NoError(t, s.Create(ctx, run))

	got, err := s.GetByID(ctx, run.ID)
	require.NoError(t, err)
	got.Progress = 99

	again, err := s.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Progress)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore()

	_, err := s.GetFiles(ctx, "run-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.SaveFiles(ctx, "run-1", []entity.GeneratedFile{{Path: "index.html", Content: "<html></html>"}}))
	files, err := s.GetFiles(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "run-1", files[0].RunID)

	require.NoError(t, s.DeleteFiles(ctx, "run-1"))
	_, err = s.GetFiles(ctx, "run-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArtifactStore(t *testing.T) {
	ctx := context.Background()
	s := NewArtifactStore()

	require.NoError(t, s.Put(ctx, entity.Artifact{RunID: "run-1", Preview: "<p>doc</p>"}))
	doc, err := s.Preview(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>doc</p>", doc)

	require.NoError(t, s.Delete(ctx, "run-1"))
	_, err = s.Preview(ctx, "run-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
