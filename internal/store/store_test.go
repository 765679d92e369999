package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Runs().Record(context.Background(), &Run{Kind: "page", Op: "pull"}, nil))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs().Recent(context.Background(), QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.Runs()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &Run{Kind: "page", Op: "pull", CourseID: "42", StartedAt: base, FinishedAt: base.Add(time.Second), Created: 2}
	require.NoError(t, repo.Record(ctx, first, []Item{
		{Bucket: BucketCreated, ItemID: "welcome", Title: "Welcome"},
		{Bucket: BucketCreated, ItemID: "syllabus", Title: "Syllabus"},
	}))
	assert.NotEmpty(t, first.ID)

	second := &Run{Kind: "quiz", Op: "push", CourseID: "42", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), Errors: 1}
	require.NoError(t, repo.Record(ctx, second, []Item{
		{Bucket: BucketError, Path: "quizzes/a.quiz.md", Category: "validation", Message: "bad heading"},
	}))

	runs, err := repo.Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.True(t, base.Equal(runs[1].StartedAt))
	assert.Equal(t, 2, runs[1].Created)

	runs, err = repo.Recent(ctx, QueryOpts{Kind: "page"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "pull", runs[0].Op)

	runs, err = repo.Recent(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.ID, runs[0].ID)

	items, err := repo.Items(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "welcome", items[0].ItemID)
	assert.Equal(t, items[0].Seq+1, items[1].Seq)

	items, err = repo.Items(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Greater(t, items[0].Seq, int64(2))
	assert.Equal(t, "validation", items[0].Category)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.Runs()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 4; i++ {
		run := &Run{Kind: "page", Op: "push", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Record(ctx, run, []Item{{Bucket: BucketUpdated, ItemID: fmt.Sprint(i)}}))
		ids = append(ids, run.ID)
	}

	require.NoError(t, repo.Prune(ctx, 2))
	runs, err := repo.Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[3], runs[0].ID)
	assert.Equal(t, ids[2], runs[1].ID)

	items, err := repo.Items(ctx, ids[0])
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, repo.Prune(ctx, 10))
	runs, err = repo.Recent(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("COURSESYNC_DB", filepath.Join(dir, "custom", "j.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "j.db"), p)
	assert.DirExists(t, filepath.Join(dir, "custom"))

	t.Setenv("COURSESYNC_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "coursesync", "journal.db"), p)
}
