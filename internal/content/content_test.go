package content

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)

		got, err = ParseKind(" " + k.Dir() + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("Quizzes")
	require.NoError(t, err)
	assert.Equal(t, KindQuiz, got)

	_, err = ParseKind("announcement")
	assert.Error(t, err)
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("get: %w", ErrNotFound), CategoryNotFound},
		{"slug mismatch", &SlugMismatchError{Title: "A", Predicted: "a", LocalKey: "b"}, CategoryConflict},
		{"submissions", &SubmissionsError{ID: "7"}, CategoryConflict},
		{"validation", Validationf("missing %s", "title"), CategoryValidation},
		{"io", fmt.Errorf("%w: disk full", ErrIO), CategoryIO},
		{"path error", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, CategoryIO},
		{"uncategorized", errors.New("connection reset"), CategoryTransport},
		{"item wrapped", &ItemError{Op: "push", Kind: KindPage, Err: ErrNotFound}, CategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.err))
		})
	}
}

func TestItemErrorMessage(t *testing.T) {
	err := &ItemError{Op: "push", Kind: KindQuiz, ID: "12", Path: "quizzes/a.quiz.md", Err: ErrConflict}
	assert.Equal(t, "push quiz quizzes/a.quiz.md: conflict", err.Error())

	err.Path = ""
	assert.Equal(t, "push quiz 12: conflict", err.Error())
}

func TestSetRemoteID(t *testing.T) {
	it := &Item{}
	it.SetRemoteID("42")
	v, _ := it.Meta.Get(KeyRemoteID)
	assert.Equal(t, int64(42), v)

	it.SetRemoteID("welcome-page")
	v, _ = it.Meta.Get(KeyRemoteID)
	assert.Equal(t, "welcome-page", v)
	assert.Equal(t, "welcome-page", it.RemoteID)
}

func TestFieldsAccessors(t *testing.T) {
	f := Fields{
		"name":    "Essay",
		"points":  float64(10),
		"count":   "3",
		"flag":    true,
		"answers": []any{map[string]any{"text": "a"}, "skip"},
	}

	assert.Equal(t, "Essay", f.String("title", "name"))
	assert.Equal(t, "10", f.String("points"))
	n, ok := f.Int("count")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = f.Float("missing")
	assert.False(t, ok)
	assert.True(t, f.Bool("flag", false))
	assert.True(t, f.Bool("missing", true))
	assert.Len(t, f.Maps("answers"), 1)
	assert.False(t, f.Has("missing"))
}
