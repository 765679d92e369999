package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/frontmatter"
)

func TestCreateNewPage(t *testing.T) {
	c := newFakeClient()
	e := newEngine(c)
	dir := filepath.Join(t.TempDir(), "pages")

	entry, err := e.CreateNew(context.Background(), content.KindPage, dir, "  Week 1: Getting Started ")
	require.NoError(t, err)
	assert.Equal(t, "week-1-getting-started", entry.ID)
	assert.Equal(t, filepath.Join(dir, "week-1-getting-started.md"), entry.Path)
	assert.Equal(t, 1, c.creates)

	doc, err := frontmatter.Parse(readString(t, entry.Path))
	require.NoError(t, err)
	assert.Equal(t, "Week 1: Getting Started", doc.Header.String("title"))
	assert.Equal(t, "week-1-getting-started", doc.Header.String("remote_id"))
	assert.False(t, doc.Header.Bool("published", true))
}

func TestCreateNewExistingFile(t *testing.T) {
	c := newFakeClient()
	e := newEngine(c)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte("keep"), 0o644))

	_, err := e.CreateNew(context.Background(), content.KindPage, dir, "Intro")
	assert.ErrorIs(t, err, content.ErrConflict)
	assert.Equal(t, "keep", readString(t, filepath.Join(dir, "intro.md")))
}

func TestCreateNewEmptyTitle(t *testing.T) {
	c := newFakeClient()
	_, err := newEngine(c).CreateNew(context.Background(), content.KindPage, t.TempDir(), "   ")
	assert.ErrorIs(t, err, content.ErrValidation)
	assert.Zero(t, c.creates)
}
