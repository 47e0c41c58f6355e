package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNote(t *testing.T, repo *NoteRepository, problem string, tags ...string) *core.Note {
	t.Helper()
	id, err := repo.NextID(context.Background())
	require.NoError(t, err)
	note := &core.Note{
		Id:          id,
		Problem:     problem,
		Solution:    "solution for " + problem,
		Explanation: "explanation for " + problem,
		Tags:        append([]string{}, tags...),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.AddNote(context.Background(), note))
	return note
}

func TestNoteBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	note := newTestNote(t, repos.Notes, "How to undo the last git commit", "git", "undo")
	assert.NotZero(t, note.Id)

	retrieved, err := repos.Notes.GetNote(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, note, retrieved)

	_, err = repos.Notes.GetNote(ctx, note.Id+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNextID(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	seen := make(map[core.ID]bool)
	var last core.ID
	for i := 0; i < 250; i++ {
		id, err := repos.Notes.NextID(ctx)
		require.NoError(t, err)
		assert.NotZero(t, id)
		assert.Greater(t, id, last)
		assert.False(t, seen[id])
		seen[id] = true
		last = id
	}
}

func TestNextID_NeverReusedAfterReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repos, err := OpenRepositories(dir, nil)
	require.NoError(t, err)
	first := newTestNote(t, repos.Notes, "first")
	require.NoError(t, repos.Notes.DeleteNote(ctx, first.Id))
	require.NoError(t, repos.Close())

	repos, err = OpenRepositories(dir, nil)
	require.NoError(t, err)
	defer repos.Close()

	id, err := repos.Notes.NextID(ctx)
	require.NoError(t, err)
	assert.Greater(t, id, first.Id)
}

func TestAddNote_Duplicate(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	note := newTestNote(t, repos.Notes, "dup")
	err = repos.Notes.AddNote(context.Background(), note)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestAddNote_UnassignedID(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	err = repos.Notes.AddNote(context.Background(), &core.Note{Problem: "p"})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestGetNotes_Multiple(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	a := newTestNote(t, repos.Notes, "a")
	b := newTestNote(t, repos.Notes, "b")

	notes, err := repos.Notes.GetNotes(context.Background(), a.Id, b.Id, 9999)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, "a", notes[a.Id].Problem)
	assert.Equal(t, "b", notes[b.Id].Problem)
	assert.NotContains(t, notes, core.ID(9999))
}

func TestDeleteNote(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	note := newTestNote(t, repos.Notes, "to delete", "tmp")

	require.NoError(t, repos.Notes.DeleteNote(ctx, note.Id))

	_, err = repos.Notes.GetNote(ctx, note.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byTag, err := repos.Notes.GetNotesByTag(ctx, "tmp")
	require.NoError(t, err)
	assert.Empty(t, byTag)

	recent, err := repos.Notes.GetRecentNotes(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	err = repos.Notes.DeleteNote(ctx, note.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetRecentNotes(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id, err := repos.Notes.NextID(ctx)
		require.NoError(t, err)
		require.NoError(t, repos.Notes.AddNote(ctx, &core.Note{
			Id:          id,
			Problem:     fmt.Sprintf("note %d", i),
			Solution:    "s",
			Explanation: "e",
			Tags:        []string{},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recent, err := repos.Notes.GetRecentNotes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "note 4", recent[0].Problem)
	assert.Equal(t, "note 3", recent[1].Problem)
	assert.Equal(t, "note 2", recent[2].Problem)

	_, err = repos.Notes.GetRecentNotes(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestGetNotesByTag(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	a := newTestNote(t, repos.Notes, "a", "go", "testing")
	newTestNote(t, repos.Notes, "b", "golang")
	c := newTestNote(t, repos.Notes, "c", "go")

	notes, err := repos.Notes.GetNotesByTag(ctx, "go")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, a.Id, notes[0].Id)
	assert.Equal(t, c.Id, notes[1].Id)

	notes, err = repos.Notes.GetNotesByTag(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestForEachNote(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	var want []core.ID
	for i := 0; i < 7; i++ {
		want = append(want, newTestNote(t, repos.Notes, fmt.Sprintf("n%d", i)).Id)
	}

	t.Run("visits all in id order across batches", func(t *testing.T) {
		var got []core.ID
		err := repos.Notes.ForEachNote(ctx, 3, func(note *core.Note) error {
			got = append(got, note.Id)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("visitor error stops iteration", func(t *testing.T) {
		calls := 0
		err := repos.Notes.ForEachNote(ctx, 2, func(note *core.Note) error {
			calls++
			if calls == 3 {
				return assert.AnError
			}
			return nil
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 3, calls)
	})

	t.Run("visitor may delete", func(t *testing.T) {
		err := repos.Notes.ForEachNote(ctx, 2, func(note *core.Note) error {
			return repos.Notes.DeleteNote(ctx, note.Id)
		})
		require.NoError(t, err)
		count, err := repos.Notes.CountNotes(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := repos.Notes.ForEachNote(cctx, 2, func(note *core.Note) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCountNotes(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	count, err := repos.Notes.CountNotes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	newTestNote(t, repos.Notes, "a", "x", "y")
	newTestNote(t, repos.Notes, "b")

	count, err = repos.Notes.CountNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNotesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	repos, err := OpenRepositories(dir, nil)
	require.NoError(t, err)
	note := newTestNote(t, repos.Notes, "durable", "disk")
	require.NoError(t, repos.Close())

	repos, err = OpenRepositories(dir, nil)
	require.NoError(t, err)
	defer repos.Close()

	got, err := repos.Notes.GetNote(context.Background(), note.Id)
	require.NoError(t, err)
	assert.Equal(t, note, got)
}
