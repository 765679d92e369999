package links

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursesync/internal/content"
)

func writePages(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func TestValidate(t *testing.T) {
	dir := writePages(t, map[string]string{
		"welcome.md": "---\ntitle: Welcome\nremote_id: welcome-page\n---\n\n" +
			"See [the syllabus](./syllabus.md#grading) and [week one](week-1.md).\n\n" +
			"![diagram](chart.md)\n" +
			"[site](https://example.com/a.md) [top](#top) [quiz](./57.quiz.md) [mail](mailto:x@y.z)\n",
		"syllabus.md": "# Syllabus\n\nBack to [home](./welcomepage.md).\n[Week](./week-on.md)\n",
		"week-one.md": "---\ntitle: Week One\n---\n\nNothing.\n",
		"broken.md":   "---\ntitle: [\n---\n\n[x](./syllabus.md)\n",
		"57.quiz.md":  "[gone](./missing.md)\n",
		"notes.txt":   "[gone](./missing.md)\n",
	})

	v, err := Validate(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "syllabus", "week-one", "welcome-page"}, v.Pages)

	require.Len(t, v.Valid, 2)
	assert.Equal(t, "syllabus", v.Valid[0].Target)
	assert.Equal(t, 5, v.Valid[0].Line)
	assert.Equal(t, "./syllabus.md#grading", v.Valid[1].URL)
	assert.Equal(t, 6, v.Valid[1].Line)

	require.Len(t, v.Issues, 4)
	assert.Equal(t, filepath.Join(dir, "broken.md"), v.Issues[0].File)
	assert.True(t, strings.HasPrefix(v.Issues[0].Reason, ReasonBadHeader), v.Issues[0].Reason)
	assert.GreaterOrEqual(t, v.Issues[0].Line, 2)

	home := v.Issues[1]
	assert.Equal(t, "welcomepage", home.Target)
	assert.Equal(t, 3, home.Line)
	assert.Equal(t, "home", home.Text)
	assert.Equal(t, ReasonMissingPage, home.Reason)
	assert.Equal(t, "welcome-page", home.Suggestion)

	assert.Equal(t, "week-on", v.Issues[2].Target)
	assert.Equal(t, "week-one", v.Issues[2].Suggestion)

	assert.Equal(t, "week-1", v.Issues[3].Target)
	assert.Equal(t, 6, v.Issues[3].Line)
	assert.Empty(t, v.Issues[3].Suggestion)

	assert.ErrorIs(t, v.Err(), content.ErrValidation)
}

func TestValidateClean(t *testing.T) {
	dir := writePages(t, map[string]string{
		"a.md": "[b](./b.md)\n",
		"b.md": "[a](a)\n",
	})
	v, err := Validate(dir)
	require.NoError(t, err)
	assert.Len(t, v.Valid, 2)
	assert.Empty(t, v.Issues)
	assert.NoError(t, v.Err())
}

func TestValidateMissingDir(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "pages"))
	assert.ErrorIs(t, err, content.ErrIO)
}
