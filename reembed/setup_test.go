package reembed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/storage/badger"
	"github.com/stretchr/testify/require"
)

// mutexLocker is a minimal WriteLocker.
type mutexLocker struct {
	mu    sync.Mutex
	calls int
}

func (l *mutexLocker) WithWriteLock(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return fn()
}

func setupTestDB(t *testing.T) (*badger.Repositories, *index.Index) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	ix, err := index.Open(context.Background(), repos.Vectors)
	require.NoError(t, err)
	return repos, ix
}

// seedNotes writes n notes to the metadata store only.
func seedNotes(t *testing.T, repos *badger.Repositories, n int) []*core.Note {
	t.Helper()
	ctx := context.Background()
	notes := make([]*core.Note, n)
	for i := range n {
		id, err := repos.Notes.NextID(ctx)
		require.NoError(t, err)
		notes[i] = &core.Note{
			Id:          id,
			Problem:     fmt.Sprintf("problem %d", i),
			Solution:    fmt.Sprintf("solution %d", i),
			Explanation: fmt.Sprintf("explanation %d", i),
			Tags:        []string{},
			CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, repos.Notes.AddNote(ctx, notes[i]))
	}
	return notes
}
