package kinds

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/dates"
	"github.com/abhisek/coursesync/internal/links"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConverter struct{}

func (failingConverter) ToPortable(context.Context, string) (string, error) {
	return "", errors.New("converter exploded")
}

func (failingConverter) ToRich(context.Context, string) (string, error) {
	return "", errors.New("converter exploded")
}

func TestDecodeTitleFallback(t *testing.T) {
	it, err := NewPage(Options{}).Decode("pages/week-1-intro.md", []byte("---\npublished: true\n---\n\nHello\n"))
	require.NoError(t, err)
	assert.Equal(t, "Week 1 Intro", it.Title)
	assert.Equal(t, "week-1-intro", it.LocalKey)
	assert.Equal(t, "", it.RemoteID)
	assert.True(t, it.Published)
	assert.Equal(t, "Hello\n", it.Body)
}

func TestDecodeMalformedHeader(t *testing.T) {
	_, err := NewPage(Options{}).Decode("x.md", []byte("---\ntitle without colon\n---\n"))
	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestPageRoundTrip(t *testing.T) {
	ctx := context.Background()
	page := NewPage(Options{Links: links.Transformer{CourseID: "77", Domain: "canvas.example.edu"}})

	it, err := page.FromRemote(ctx, &content.Remote{
		ID:        "syllabus",
		Title:     "Syllabus",
		Published: true,
		Fields: content.Fields{
			"body":       "See [week one](https://canvas.example.edu/courses/77/pages/week-one).",
			"front_page": true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "syllabus", it.LocalKey)
	assert.Equal(t, "See [week one](./week-one.md).\n", it.Body)

	data, err := page.Encode(it)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Syllabus\nremote_id: syllabus\npublished: true\nfront_page: true\n---\n\nSee [week one](./week-one.md).\n", string(data))

	back, err := page.Decode("pages/syllabus.md", data)
	require.NoError(t, err)
	assert.Equal(t, "syllabus", back.RemoteID)

	f, err := page.ToRemote(ctx, back)
	require.NoError(t, err)
	assert.Equal(t, "Syllabus", f["title"])
	assert.Equal(t, true, f["published"])
	assert.Equal(t, true, f["front_page"])
	assert.Equal(t, "See [week one](/courses/77/pages/week-one).", strings.TrimSpace(f.String("body")))
}

func TestAssignmentUsesNameField(t *testing.T) {
	ctx := context.Background()
	a := NewAssignment(Options{})
	it, err := a.Decode("assignments/12.md", []byte("---\ntitle: Essay\nremote_id: 12\npoints_possible: 10\ndue_at:\n---\n\nWrite.\n"))
	require.NoError(t, err)
	assert.Equal(t, "12", it.RemoteID)

	f, err := a.ToRemote(ctx, it)
	require.NoError(t, err)
	assert.Equal(t, "Essay", f["name"])
	assert.Equal(t, "Write.\n", f["description"])
	assert.Equal(t, int64(10), f["points_possible"])
	v, ok := f["due_at"]
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = f["lock_at"]
	assert.False(t, ok)
}

func TestAssignmentDatesUseCourseZone(t *testing.T) {
	ctx := context.Background()
	loc, err := dates.Location("America/New_York")
	require.NoError(t, err)
	a := NewAssignment(Options{Location: loc})

	it, err := a.FromRemote(ctx, &content.Remote{ID: "12", Title: "Essay", Fields: content.Fields{
		"name":    "Essay",
		"due_at":  "2026-01-17T04:59:00Z",
		"lock_at": "not a date",
	}})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-16 23:59:00", it.Meta.String("due_at"))
	assert.Equal(t, "not a date", it.Meta.String("lock_at"))

	data, err := a.Encode(it)
	require.NoError(t, err)
	assert.Contains(t, string(data), "due_at: \"2026-01-16 23:59:00\"\n")

	back, err := a.Decode("assignments/12.md", data)
	require.NoError(t, err)
	back.Meta.Set("unlock_at", "2026-07-01 09:00")
	f, err := a.ToRemote(ctx, back)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-17T04:59:00Z", f["due_at"])
	assert.Equal(t, "2026-07-01T13:00:00Z", f["unlock_at"])
	assert.Equal(t, "not a date", f["lock_at"])
}

func TestConverterFailure(t *testing.T) {
	d := NewDiscussion(Options{Converter: failingConverter{}})
	_, err := d.FromRemote(context.Background(), &content.Remote{ID: "3", Title: "T", Fields: content.Fields{"message": "<p>x</p>"}})
	require.Error(t, err)
	assert.Equal(t, content.CategoryTransport, content.Category(err))
}

const sampleQuiz = `---
title: Week 1 Check
quiz_type: assignment
---

# Week 1 Check

## Questions

### 1. [MC] What is 2 + 2? (2 pts)

a. 3
*b. 4

---

### 2. [SA] Capital of France?

*Paris
`

func TestQuizDecodeAndToRemote(t *testing.T) {
	q := NewQuiz(Options{})
	it, err := q.Decode("quizzes/check.quiz.md", []byte(sampleQuiz))
	require.NoError(t, err)
	assert.Equal(t, "check", it.LocalKey)
	assert.Equal(t, "Week 1 Check", it.Title)

	f, err := q.ToRemote(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, "assignment", f["quiz_type"])
	qs, ok := f["questions"].([]content.Fields)
	require.True(t, ok)
	require.Len(t, qs, 2)
	assert.Equal(t, "multiple_choice_question", qs[0]["question_type"])
	assert.Equal(t, 2.0, qs[0]["points_possible"])
	assert.Equal(t, "short_answer_question", qs[1]["question_type"])
}

func TestQuizDecodeRejectsBadGrammar(t *testing.T) {
	_, err := NewQuiz(Options{}).Decode("quizzes/bad.quiz.md", []byte("### 1. [ZZ] What?\n\n*a. x\n"))
	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestQuizFromRemote(t *testing.T) {
	it, err := NewQuiz(Options{}).FromRemote(context.Background(), &content.Remote{
		ID:    "5",
		Title: "Pop Quiz",
		Fields: content.Fields{
			"description": "Answer quickly.",
			"time_limit":  float64(10),
			"questions": []any{
				map[string]any{
					"question_type":   "true_false_question",
					"question_text":   "Sky is blue",
					"points_possible": float64(1),
					"answers": []any{
						map[string]any{"text": "True", "weight": float64(100)},
						map[string]any{"text": "False", "weight": float64(0)},
					},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "5", it.LocalKey)
	n, ok := it.Meta.Int("time_limit")
	assert.True(t, ok)
	assert.Equal(t, int64(10), n)
	assert.Contains(t, it.Body, "# Pop Quiz")
	assert.Contains(t, it.Body, "## Instructions\n\nAnswer quickly.")
	assert.Contains(t, it.Body, "### 1. [TF] Sky is blue (1 pt)\n\n*a. True\nb. False\n")
}

const sampleRubric = `---
title: Essay Rubric
assignment_id: 12
criteria:
  - description: Thesis
    points: 5.0
  - description: Evidence
    points: 3.0
ratings:
  - criterion: 1
    description: Clear
    points: 5.0
  - criterion: 1
    description: Missing
    points: 0.0
  - criterion: 2
    description: Strong
    points: 3.0
---
`

func TestRubricToRemoteNestsRatings(t *testing.T) {
	r := NewRubric(Options{})
	it, err := r.Decode("rubrics/essay.md", []byte(sampleRubric))
	require.NoError(t, err)

	f, err := r.ToRemote(context.Background(), it)
	require.NoError(t, err)
	crits, ok := f["criteria"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, crits, 2)
	assert.Equal(t, "Thesis", crits[0]["description"])
	assert.Len(t, crits[0]["ratings"], 2)
	assert.Len(t, crits[1]["ratings"], 1)
	assert.NotContains(t, crits[0]["ratings"].([]map[string]any)[0], "criterion")
	assert.Equal(t, int64(12), f["assignment_id"])
}

func TestRubricDecodeRejectsDanglingRating(t *testing.T) {
	text := strings.Replace(sampleRubric, "criterion: 2", "criterion: 3", 1)
	_, err := NewRubric(Options{}).Decode("rubrics/essay.md", []byte(text))
	assert.ErrorIs(t, err, content.ErrValidation)
}

func rubricRemote(ratingsPerCriterion ...int) *content.Remote {
	var crits []any
	for i, n := range ratingsPerCriterion {
		var ratings []any
		for j := 0; j < n; j++ {
			ratings = append(ratings, map[string]any{"id": "r" + string(rune('a'+i)) + string(rune('0'+j))})
		}
		crits = append(crits, map[string]any{"id": "_" + string(rune('1'+i)), "ratings": ratings})
	}
	return &content.Remote{ID: "40", Fields: content.Fields{"criteria": crits}}
}

func TestRubricAlign(t *testing.T) {
	r := NewRubric(Options{})
	it, err := r.Decode("rubrics/essay.md", []byte(sampleRubric))
	require.NoError(t, err)

	changed, err := r.Align(it, rubricRemote(2, 1))
	require.NoError(t, err)
	assert.True(t, changed)

	crits := it.Meta.Dicts("criteria")
	assert.Equal(t, "_1", crits[0].String("id"))
	assert.Equal(t, "_2", crits[1].String("id"))
	ratings := it.Meta.Dicts("ratings")
	assert.Equal(t, "ra0", ratings[0].String("id"))
	assert.Equal(t, "ra1", ratings[1].String("id"))
	assert.Equal(t, "rb0", ratings[2].String("id"))

	changed, err = r.Align(it, rubricRemote(2, 1))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRubricAlignCountMismatch(t *testing.T) {
	r := NewRubric(Options{})
	it, err := r.Decode("rubrics/essay.md", []byte(sampleRubric))
	require.NoError(t, err)

	_, err = r.Align(it, rubricRemote(2))
	assert.ErrorIs(t, err, content.ErrConflict)
	for _, d := range it.Meta.Dicts("criteria") {
		assert.False(t, d.Has("id"))
	}
}

func TestRubricFromRemoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewRubric(Options{})
	it, err := r.FromRemote(ctx, &content.Remote{
		ID:    "40",
		Title: "Essay Rubric",
		Fields: content.Fields{
			"assignment_id": float64(12),
			"criteria": []any{
				map[string]any{"id": "_1", "description": "Thesis", "points": float64(5), "ratings": []any{
					map[string]any{"id": "ra", "description": "Clear", "points": float64(5)},
					map[string]any{"id": "rb", "description": "Missing", "points": float64(0)},
				}},
			},
		},
	})
	require.NoError(t, err)
	assert.False(t, it.Meta.Has("published"))

	data, err := r.Encode(it)
	require.NoError(t, err)
	back, err := r.Decode("rubrics/40.md", data)
	require.NoError(t, err)

	f, err := r.ToRemote(ctx, back)
	require.NoError(t, err)
	crits := f["criteria"].([]map[string]any)
	require.Len(t, crits, 1)
	assert.Equal(t, "_1", crits[0]["id"])
	ratings := crits[0]["ratings"].([]map[string]any)
	require.Len(t, ratings, 2)
	assert.Equal(t, "Missing", ratings[1]["description"])
}

func TestModuleAlignAndToRemote(t *testing.T) {
	m := NewModule(Options{})
	it, err := m.Decode("modules/week-1.md", []byte(`---
title: Week 1
published: true
items:
  - type: SubHeader
    title: Readings
  - type: Page
    title: Welcome
    page_url: welcome
    indent: 1
---
`))
	require.NoError(t, err)

	f, err := m.ToRemote(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, "Week 1", f["name"])
	items := f["items"].([]map[string]any)
	require.Len(t, items, 2)
	assert.NotContains(t, items[0], "id")
	assert.Equal(t, "welcome", items[1]["page_url"])

	remote := &content.Remote{ID: "9", Fields: content.Fields{"items": []any{
		map[string]any{"id": float64(101)},
		map[string]any{"id": float64(102)},
	}}}
	changed, err := m.Align(it, remote)
	require.NoError(t, err)
	assert.True(t, changed)
	n, _ := it.Meta.Dicts("items")[1].Int("id")
	assert.Equal(t, int64(102), n)

	_, err = m.Align(it, &content.Remote{ID: "9", Fields: content.Fields{"items": []any{}}})
	assert.ErrorIs(t, err, content.ErrConflict)
}

func TestAllCoversEveryKind(t *testing.T) {
	all := All(Options{})
	for _, k := range content.AllKinds() {
		a, ok := all[k]
		require.True(t, ok, k.String())
		assert.Equal(t, k, a.Kind())
	}
	assert.True(t, all[content.KindPage].SlugAddressed())
	assert.False(t, all[content.KindQuiz].SlugAddressed())
}
