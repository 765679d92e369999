package rename

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyRenamesAndRewrites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "week-one.md", "---\nremote_id: week-1\n---\n\nbody\n")
	index := writeFile(t, dir, "index.md",
		"See [one](week-one), [two](./week-one.md), [three](week-one.md#top) and [four]( ./week-one ).\n"+
			"Leave [other](week-one-extra.md) and [ext](https://x.test/week-one) alone.\n")
	notes := writeFile(t, dir, "notes.txt", "[one](week-one)\n")

	var p Propagator
	res, err := p.Apply(context.Background(), dir, "week-one", "week-1", ".md")
	require.NoError(t, err)
	assert.True(t, res.Renamed)
	assert.Equal(t, []string{index}, res.Rewritten)

	assert.NoFileExists(t, filepath.Join(dir, "week-one.md"))
	assert.FileExists(t, filepath.Join(dir, "week-1.md"))
	assert.Equal(t,
		"See [one](week-1), [two](./week-1.md), [three](week-1.md#top) and [four]( ./week-1 ).\n"+
			"Leave [other](week-one-extra.md) and [ext](https://x.test/week-one) alone.\n",
		readFile(t, index))
	assert.Equal(t, "[one](week-one)\n", readFile(t, notes))
}

func TestApplyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "draft.md", "body\n")
	index := writeFile(t, dir, "index.md", "[d](./draft.md)\n")

	var p Propagator
	_, err := p.Apply(context.Background(), dir, "draft", "final", ".md")
	require.NoError(t, err)
	before, err := os.Stat(index)
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), dir, "draft", "final", ".md")
	require.NoError(t, err)
	assert.False(t, res.Renamed)
	assert.Empty(t, res.Rewritten)

	after, err := os.Stat(index)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, "[d](./final.md)\n", readFile(t, index))
}

func TestApplyNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "new\n")
	target := writeFile(t, dir, "b.md", "existing\n")
	index := writeFile(t, dir, "index.md", "[a](a.md)\n")

	var p Propagator
	_, err := p.Apply(context.Background(), dir, "a", "b", ".md")
	var te *TargetExistsError
	require.True(t, errors.As(err, &te))
	assert.True(t, errors.Is(err, content.ErrConflict))

	assert.Equal(t, "existing\n", readFile(t, target))
	assert.FileExists(t, filepath.Join(dir, "a.md"))
	assert.Equal(t, "[a](a.md)\n", readFile(t, index))
}

func TestRewriteCompoundExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "midterm.quiz.md", "quiz\n")
	page := writeFile(t, dir, "review.md", "[quiz](midterm.quiz.md) [bare](midterm)\n")

	var p Propagator
	_, err := p.Apply(context.Background(), dir, "midterm", "57", ".quiz.md")
	require.NoError(t, err)
	assert.Equal(t, "[quiz](57.quiz.md) [bare](57)\n", readFile(t, page))
}
