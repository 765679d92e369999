package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abhisek/coursesync/internal/content"
)

// endpoint describes how one kind maps onto the REST API.
type endpoint struct {
	path     string // collection below the course
	envelope string // request body wrapper key, "" for top-level params
	idKey    string
	titleKey string
}

var endpoints = map[content.Kind]endpoint{
	content.KindPage:       {path: "pages", envelope: "wiki_page", idKey: "url", titleKey: "title"},
	content.KindQuiz:       {path: "quizzes", envelope: "quiz", idKey: "id", titleKey: "title"},
	content.KindDiscussion: {path: "discussion_topics", idKey: "id", titleKey: "title"},
	content.KindAssignment: {path: "assignments", envelope: "assignment", idKey: "id", titleKey: "name"},
	content.KindRubric:     {path: "rubrics", envelope: "rubric", idKey: "id", titleKey: "title"},
	content.KindModule:     {path: "modules", envelope: "module", idKey: "id", titleKey: "name"},
}

func endpointFor(kind content.Kind) (endpoint, error) {
	ep, ok := endpoints[kind]
	if !ok {
		return endpoint{}, fmt.Errorf("canvas: unsupported kind %s", kind)
	}
	return ep, nil
}

// List returns every item of kind in the course.
func (c *Client) List(ctx context.Context, kind content.Kind) ([]content.Summary, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := c.list(ctx, c.coursePath(ep.path), nil, "")
	if err != nil {
		return nil, err
	}
	out := make([]content.Summary, 0, len(rows))
	for _, m := range rows {
		r := toRemote(ep, m)
		out = append(out, content.Summary{ID: r.ID, Title: r.Title, Published: r.Published, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

// Get fetches one item with its children: quiz questions, module items,
// rubric criteria.
func (c *Client) Get(ctx context.Context, kind content.Kind, id string) (*content.Remote, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	var query url.Values
	if kind == content.KindRubric {
		query = url.Values{"include[]": {"associations"}}
	}
	var m map[string]any
	if _, err := c.do(ctx, http.MethodGet, c.coursePath(ep.path, id), query, nil, &m); err != nil {
		return nil, err
	}

	switch kind {
	case content.KindQuiz:
		qs, err := c.list(ctx, c.coursePath(ep.path, id, "questions"), nil, "")
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		m["questions"] = anyList(qs)
	case content.KindModule:
		items, err := c.list(ctx, c.coursePath(ep.path, id, "items"), nil, "")
		if err != nil {
			return nil, fmt.Errorf("list module items: %w", err)
		}
		m["items"] = anyList(items)
	case content.KindRubric:
		normalizeRubric(m)
	}
	return toRemote(ep, m), nil
}

// Create creates an item and its children.
func (c *Client) Create(ctx context.Context, kind content.Kind, fields content.Fields) (*content.Remote, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case content.KindQuiz:
		return c.saveQuiz(ctx, ep, "", fields)
	case content.KindModule:
		return c.saveModule(ctx, ep, "", fields)
	case content.KindRubric:
		return c.saveRubric(ctx, ep, "", fields)
	}
	var m map[string]any
	if _, err := c.do(ctx, http.MethodPost, c.coursePath(ep.path), nil, wrap(ep, fields), &m); err != nil {
		return nil, err
	}
	return toRemote(ep, m), nil
}

// Update replaces an item's content.
func (c *Client) Update(ctx context.Context, kind content.Kind, id string, fields content.Fields) (*content.Remote, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case content.KindQuiz:
		return c.saveQuiz(ctx, ep, id, fields)
	case content.KindModule:
		return c.saveModule(ctx, ep, id, fields)
	case content.KindRubric:
		return c.saveRubric(ctx, ep, id, fields)
	}
	var m map[string]any
	if _, err := c.do(ctx, http.MethodPut, c.coursePath(ep.path, id), nil, wrap(ep, fields), &m); err != nil {
		return nil, err
	}
	return toRemote(ep, m), nil
}

// HasSubmissions reports whether learners have started or turned in work
// for a quiz or assignment. Preview and untaken quiz attempts do not count.
func (c *Client) HasSubmissions(ctx context.Context, kind content.Kind, id string) (bool, error) {
	switch kind {
	case content.KindQuiz:
		subs, err := c.list(ctx, c.coursePath("quizzes", id, "submissions"), nil, "quiz_submissions")
		if err != nil {
			return false, err
		}
		for _, s := range subs {
			switch content.Fields(s).String("workflow_state") {
			case "untaken", "preview":
			default:
				return true, nil
			}
		}
	case content.KindAssignment:
		subs, err := c.list(ctx, c.coursePath("assignments", id, "submissions"), nil, "")
		if err != nil {
			return false, err
		}
		for _, s := range subs {
			if content.Fields(s).String("workflow_state") != "unsubmitted" {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *Client) saveQuiz(ctx context.Context, ep endpoint, id string, fields content.Fields) (*content.Remote, error) {
	questions := fields.Maps("questions")
	settings := without(fields, "questions")

	var m map[string]any
	if id == "" {
		if _, err := c.do(ctx, http.MethodPost, c.coursePath(ep.path), nil, wrap(ep, settings), &m); err != nil {
			return nil, err
		}
		id = idString(m["id"])
	} else {
		if _, err := c.do(ctx, http.MethodPut, c.coursePath(ep.path, id), nil, wrap(ep, settings), &m); err != nil {
			return nil, err
		}
		existing, err := c.list(ctx, c.coursePath(ep.path, id, "questions"), nil, "")
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		for _, q := range existing {
			qid := idString(q["id"])
			if _, err := c.do(ctx, http.MethodDelete, c.coursePath(ep.path, id, "questions", qid), nil, nil, nil); err != nil {
				return nil, fmt.Errorf("delete question %s: %w", qid, err)
			}
		}
	}

	created := make([]any, 0, len(questions))
	for i, q := range questions {
		body := map[string]any(without(q))
		body["position"] = i + 1
		var qm map[string]any
		if _, err := c.do(ctx, http.MethodPost, c.coursePath(ep.path, id, "questions"), nil,
			map[string]any{"question": body}, &qm); err != nil {
			return nil, fmt.Errorf("create question %d: %w", i+1, err)
		}
		created = append(created, qm)
	}
	m["questions"] = created
	return toRemote(ep, m), nil
}

// saveModule writes the module and its items. Items carrying an id are
// updated in place, the rest are created. Remote items absent locally are
// left alone.
func (c *Client) saveModule(ctx context.Context, ep endpoint, id string, fields content.Fields) (*content.Remote, error) {
	items := fields.Maps("items")
	settings := without(fields, "items")

	var m map[string]any
	method, path := http.MethodPost, c.coursePath(ep.path)
	if id != "" {
		method, path = http.MethodPut, c.coursePath(ep.path, id)
	}
	if _, err := c.do(ctx, method, path, nil, wrap(ep, settings), &m); err != nil {
		return nil, err
	}
	id = idString(m["id"])

	saved := make([]any, 0, len(items))
	for i, it := range items {
		body := map[string]any(without(it, "id"))
		body["position"] = i + 1
		itemID := it.String("id")
		method, path := http.MethodPost, c.coursePath(ep.path, id, "items")
		if itemID != "" {
			method, path = http.MethodPut, c.coursePath(ep.path, id, "items", itemID)
		}
		var im map[string]any
		if _, err := c.do(ctx, method, path, nil, map[string]any{"module_item": body}, &im); err != nil {
			return nil, fmt.Errorf("save module item %d: %w", i+1, err)
		}
		saved = append(saved, im)
	}
	m["items"] = saved
	return toRemote(ep, m), nil
}

// saveRubric posts criteria as index-keyed hashes, the form the rubrics
// endpoint expects, and associates the rubric with its assignment.
func (c *Client) saveRubric(ctx context.Context, ep endpoint, id string, fields content.Fields) (*content.Remote, error) {
	criteria := make(map[string]any)
	for i, crit := range fields.Maps("criteria") {
		body := map[string]any(without(crit, "ratings"))
		ratings := make(map[string]any)
		for j, r := range crit.Maps("ratings") {
			ratings[strconv.Itoa(j)] = map[string]any(r)
		}
		body["ratings"] = ratings
		criteria[strconv.Itoa(i)] = body
	}
	rubric := map[string]any{
		"title":    fields.String("title"),
		"criteria": criteria,
	}
	if fields.Has("free_form_criterion_comments") {
		rubric["free_form_criterion_comments"] = fields.Bool("free_form_criterion_comments", false)
	}
	body := map[string]any{"rubric": rubric}
	if aid := fields.String("assignment_id"); aid != "" {
		body["rubric_association"] = map[string]any{
			"association_id":   aid,
			"association_type": "Assignment",
			"use_for_grading":  true,
			"purpose":          "grading",
		}
	}

	method, path := http.MethodPost, c.coursePath(ep.path)
	if id != "" {
		method, path = http.MethodPut, c.coursePath(ep.path, id)
	}
	var resp struct {
		Rubric      map[string]any `json:"rubric"`
		Association map[string]any `json:"rubric_association"`
	}
	if _, err := c.do(ctx, method, path, nil, body, &resp); err != nil {
		return nil, err
	}
	m := resp.Rubric
	if m == nil {
		return nil, fmt.Errorf("%w: rubric response without rubric", content.ErrTransport)
	}
	if resp.Association != nil {
		m["associations"] = []any{resp.Association}
	}
	normalizeRubric(m)
	return toRemote(ep, m), nil
}

// normalizeRubric exposes the rubric's criteria under "criteria" and its
// assignment association as "assignment_id".
func normalizeRubric(m map[string]any) {
	if data, ok := m["data"]; ok {
		m["criteria"] = data
	}
	assocs, _ := m["associations"].([]any)
	for _, a := range assocs {
		am, ok := a.(map[string]any)
		if ok && am["association_type"] == "Assignment" {
			m["assignment_id"] = am["association_id"]
			break
		}
	}
}

func toRemote(ep endpoint, m map[string]any) *content.Remote {
	f := content.Fields(m)
	return &content.Remote{
		ID:        idString(m[ep.idKey]),
		Title:     f.String(ep.titleKey, "title", "name"),
		Published: f.Bool("published", false),
		UpdatedAt: f.String("updated_at"),
		Fields:    f,
	}
}

func wrap(ep endpoint, fields content.Fields) any {
	if ep.envelope == "" {
		return map[string]any(fields)
	}
	return map[string]any{ep.envelope: map[string]any(fields)}
}

// without returns a copy of f lacking keys.
func without(f content.Fields, keys ...string) content.Fields {
	out := make(content.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func anyList(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
