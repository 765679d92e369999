package canvas

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/abhisek/coursesync/internal/content"
)

var _ content.CourseClient = (*Client)(nil)

// groupKeys are the assignment group fields kept in snapshots.
var groupKeys = []string{"id", "name", "position", "group_weight", "rules"}

func (c *Client) courseRoot() string {
	return "/courses/" + url.PathEscape(c.courseID)
}

// GetCourse fetches the course with its syllabus and front page.
func (c *Client) GetCourse(ctx context.Context) (content.Fields, error) {
	var m map[string]any
	query := url.Values{"include[]": {"syllabus_body"}}
	if _, err := c.do(ctx, http.MethodGet, c.courseRoot(), query, nil, &m); err != nil {
		return nil, err
	}
	front, err := c.frontPage(ctx)
	if err != nil {
		return nil, err
	}
	m["front_page"] = front
	return content.Fields(m), nil
}

// frontPage returns the front page's url, or nil when the course has none.
func (c *Client) frontPage(ctx context.Context) (any, error) {
	var page map[string]any
	_, err := c.do(ctx, http.MethodGet, c.coursePath("front_page"), nil, nil, &page)
	if errors.Is(err, content.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u := idString(page["url"]); u != "" {
		return u, nil
	}
	return nil, nil
}

// UpdateCourse writes course settings and returns the course as stored.
func (c *Client) UpdateCourse(ctx context.Context, fields content.Fields) (content.Fields, error) {
	var m map[string]any
	body := map[string]any{"course": map[string]any(fields)}
	if _, err := c.do(ctx, http.MethodPut, c.courseRoot(), nil, body, &m); err != nil {
		return nil, err
	}
	return content.Fields(m), nil
}

// SetFrontPage makes pageID the course front page.
func (c *Client) SetFrontPage(ctx context.Context, pageID string) error {
	body := map[string]any{"wiki_page": map[string]any{"front_page": true}}
	_, err := c.do(ctx, http.MethodPut, c.coursePath("pages", pageID), nil, body, nil)
	return err
}

// AssignmentGroups lists the course's assignment groups in position order.
func (c *Client) AssignmentGroups(ctx context.Context) ([]content.Fields, error) {
	rows, err := c.list(ctx, c.coursePath("assignment_groups"), nil, "")
	if err != nil {
		return nil, err
	}
	out := make([]content.Fields, 0, len(rows))
	for _, r := range rows {
		g := content.Fields{}
		for _, k := range groupKeys {
			if v, ok := r[k]; ok {
				g[k] = v
			}
		}
		out = append(out, g)
	}
	return out, nil
}
