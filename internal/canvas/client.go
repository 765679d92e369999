// Package canvas is a REST client for the Canvas LMS content endpoints of
// one course.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
)

const (
	defaultPerPage = 100
	maxErrorBody   = 4 << 10
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("canvas: %s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports 404 responses as not found and everything else as a transport
// failure.
func (e *APIError) Is(target error) bool {
	if e.Status == http.StatusNotFound {
		return target == content.ErrNotFound
	}
	return target == content.ErrTransport
}

// Client talks to one course. It is safe to share between goroutines.
type Client struct {
	baseURL  string
	courseID string
	token    string
	http     *http.Client
	perPage  int
}

var (
	_ content.Client            = (*Client)(nil)
	_ content.SubmissionChecker = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURL points the client at an API root other than
// https://<domain>/api/v1.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithPerPage sets the page size requested from list endpoints.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// New returns a client for courseID on domain, authenticating with token.
func New(domain, token, courseID string, opts ...Option) *Client {
	c := &Client{
		baseURL:  "https://" + strings.TrimRight(domain, "/") + "/api/v1",
		courseID: courseID,
		token:    token,
		http:     &http.Client{Timeout: 60 * time.Second},
		perPage:  defaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CourseID returns the course the client is bound to.
func (c *Client) CourseID() string { return c.courseID }

func (c *Client) coursePath(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "/courses/" + url.PathEscape(c.courseID) + "/" + strings.Join(escaped, "/")
}

// do sends one request. path is relative to the API root unless it is an
// absolute URL. The response body is decoded into out when out is non-nil.
// It returns the next-page URL from the Link header, if any.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		u = c.baseURL + path
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", content.ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %w", content.ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	ctxlog.FromContext(ctx).Debug("canvas request",
		"method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{Method: method, URL: req.URL.Redacted(), Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return "", fmt.Errorf("%w: decode %s %s: %w", content.ErrTransport, method, path, err)
		}
	}
	return nextLink(resp.Header.Get("Link")), nil
}

var linkPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="([^"]+)"`)

// nextLink extracts the rel="next" target of a Link header.
func nextLink(header string) string {
	for _, m := range linkPattern.FindAllStringSubmatch(header, -1) {
		if m[2] == "next" {
			return m[1]
		}
	}
	return ""
}

// list follows pagination and collects every element. When key is set, the
// elements are read from that field of an object response instead of a
// top-level array.
func (c *Client) list(ctx context.Context, path string, query url.Values, key string) ([]map[string]any, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("per_page", strconv.Itoa(c.perPage))

	var out []map[string]any
	next := path
	for next != "" {
		var page []map[string]any
		var err error
		if key == "" {
			next, err = c.do(ctx, http.MethodGet, next, q, nil, &page)
		} else {
			var obj map[string]json.RawMessage
			next, err = c.do(ctx, http.MethodGet, next, q, nil, &obj)
			if err == nil && obj[key] != nil {
				err = json.Unmarshal(obj[key], &page)
			}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		// Next links carry the full query already.
		q = nil
	}
	return out, nil
}

func idString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	return ""
}
