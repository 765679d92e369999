package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursesync/internal/links"
	"github.com/abhisek/coursesync/internal/reconcile"
)

func sampleCourse() *reconcile.CourseReport {
	return &reconcile.CourseReport{
		Op:         reconcile.OpPull,
		Synced:     []reconcile.SettingDiff{{Field: "time_zone", Local: "UTC", Remote: "UTC"}},
		Differs:    []reconcile.SettingDiff{{Field: "name", Local: "Intro to Go", Remote: "Intro"}, {Field: "workflow_state", Local: "unpublished", Remote: "available"}},
		RemoteOnly: []reconcile.SettingDiff{{Field: "syllabus_body", Remote: strings.Repeat("long syllabus ", 10)}},
		Groups:     2,
		Errors:     []error{errors.New("set front page welcome: boom")},
	}
}

func TestFromCourse(t *testing.T) {
	c := FromCourse(sampleCourse())
	assert.Equal(t, "pull", c.Op)
	require.Len(t, c.Conflicts, 1)
	assert.Equal(t, "name", c.Conflicts[0].Field)
	assert.Len(t, c.Differs, 2)
	assert.Equal(t, []Setting{}, c.LocalOnly)
	assert.Equal(t, []string{"set front page welcome: boom"}, c.Errors)
}

func TestWriteCourse(t *testing.T) {
	var buf bytes.Buffer
	WriteCourse(&buf, FromCourse(sampleCourse()))
	out := buf.String()
	assert.Contains(t, out, "course pull: 1 synced, 2 differ, 1 remote only, 0 local only")
	assert.Contains(t, out, "conflict")
	assert.Contains(t, out, "Intro -> Intro to Go")
	assert.Contains(t, out, "differs")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2 assignment groups recorded")
	assert.Contains(t, out, "set front page welcome: boom")
	assert.NotContains(t, out, "time_zone")
}

func TestWriteValidation(t *testing.T) {
	v := &links.Validation{
		Pages: []string{"intro", "week-one"},
		Valid: []links.Link{{File: "pages/intro.md", Line: 1, Target: "week-one"}},
		Issues: []links.Issue{
			{Link: links.Link{File: "pages/intro.md", Line: 4, URL: "./weekone.md", Target: "weekone"}, Reason: links.ReasonMissingPage, Suggestion: "week-one"},
			{Link: links.Link{File: "pages/bad.md", Line: 2}, Reason: links.ReasonBadHeader + ": bad"},
		},
	}
	r := FromValidation("pages", v)
	assert.Equal(t, 2, r.Links)
	assert.Equal(t, 1, r.ValidLinks)
	require.Len(t, r.Issues, 2)

	var buf bytes.Buffer
	WriteValidation(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "pages: 2 pages, 2 links, 2 issues")
	assert.Contains(t, out, "intro.md:4 -> weekone")
	assert.Contains(t, out, "week-one?")
	assert.Contains(t, out, "bad.md:2")

	buf.Reset()
	WriteValidation(&buf, FromValidation("pages", &links.Validation{Pages: []string{"a"}}))
	assert.Contains(t, buf.String(), "all links resolve")
}
