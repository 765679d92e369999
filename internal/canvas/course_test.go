package canvas

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursesync/internal/content"
)

func TestGetCourseIncludesFrontPage(t *testing.T) {
	s := newServer(t)
	s.handle(http.MethodGet, "/courses/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "syllabus_body", r.URL.Query().Get("include[]"))
		_, _ = w.Write([]byte(`{"id": 42, "name": "Intro", "default_view": "wiki"}`))
	})
	s.json(http.MethodGet, "/courses/42/front_page", map[string]any{"url": "welcome", "title": "Welcome"})

	f, err := s.client().GetCourse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Intro", f.String("name"))
	assert.Equal(t, "welcome", f["front_page"])
}

func TestGetCourseWithoutFrontPage(t *testing.T) {
	s := newServer(t)
	s.json(http.MethodGet, "/courses/42", map[string]any{"id": 42, "name": "Intro"})

	f, err := s.client().GetCourse(context.Background())
	require.NoError(t, err)
	v, ok := f["front_page"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestGetCourseMissing(t *testing.T) {
	s := newServer(t)
	_, err := s.client().GetCourse(context.Background())
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestUpdateCourseAndFrontPage(t *testing.T) {
	s := newServer(t)
	s.json(http.MethodPut, "/courses/42", map[string]any{"id": 42, "name": "Renamed"})
	s.json(http.MethodPut, "/courses/42/pages/welcome", map[string]any{"url": "welcome", "front_page": true})
	c := s.client()

	got, err := c.UpdateCourse(context.Background(), content.Fields{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.String("name"))
	put := s.callsTo(http.MethodPut, "/courses/42")
	require.Len(t, put, 1)
	assert.Equal(t, map[string]any{"name": "Renamed"}, put[0].Body["course"])

	require.NoError(t, c.SetFrontPage(context.Background(), "welcome"))
	fp := s.callsTo(http.MethodPut, "/courses/42/pages/welcome")
	require.Len(t, fp, 1)
	assert.Equal(t, map[string]any{"front_page": true}, fp[0].Body["wiki_page"])
}

func TestAssignmentGroupsKeepsSnapshotFields(t *testing.T) {
	s := newServer(t)
	s.json(http.MethodGet, "/courses/42/assignment_groups", []map[string]any{
		{"id": 1, "name": "Homework", "position": 1, "group_weight": 40, "rules": map[string]any{}, "integration_data": map[string]any{}},
		{"id": 2, "name": "Exams", "position": 2, "group_weight": 60},
	})

	got, err := s.client().AssignmentGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Homework", got[0].String("name"))
	assert.NotContains(t, got[0], "integration_data")
	assert.Equal(t, float64(60), got[1]["group_weight"])
}
