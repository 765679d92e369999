// Package kinds holds the per-kind encodings between local header/body
// files and the remote platform's attribute maps.
package kinds

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/dates"
	"github.com/abhisek/coursesync/internal/frontmatter"
	"github.com/abhisek/coursesync/internal/links"
	"github.com/abhisek/coursesync/internal/markup"
	"github.com/abhisek/coursesync/internal/slug"
)

// Options configures the adapters.
type Options struct {
	// Converter translates bodies. Defaults to markup.Passthrough.
	Converter content.Converter
	// Links rewrites page links in converted bodies.
	Links links.Transformer
	// Location is the zone of wall-clock timestamps in headers. Defaults
	// to the host's zone.
	Location *time.Location
}

func (o Options) converter() content.Converter {
	if o.Converter == nil {
		return markup.Passthrough{}
	}
	return o.Converter
}

// All returns one adapter per kind.
func All(opts Options) map[content.Kind]content.Adapter {
	return map[content.Kind]content.Adapter{
		content.KindPage:       NewPage(opts),
		content.KindQuiz:       NewQuiz(opts),
		content.KindDiscussion: NewDiscussion(opts),
		content.KindAssignment: NewAssignment(opts),
		content.KindRubric:     NewRubric(opts),
		content.KindModule:     NewModule(opts),
	}
}

// decode reads a header/body file into an item. A missing title falls back
// to one derived from the file name.
func decode(kind content.Kind, ext, path string, data []byte) (*content.Item, error) {
	doc, err := frontmatter.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrValidation, err)
	}
	key := strings.TrimSuffix(filepath.Base(path), ext)
	it := &content.Item{
		Kind:      kind,
		RemoteID:  doc.Header.String(content.KeyRemoteID),
		LocalKey:  key,
		Title:     doc.Header.String(content.KeyTitle),
		Body:      doc.Body,
		Published: doc.Header.Bool(content.KeyPublished, false),
		Meta:      doc.Header,
		Path:      path,
	}
	if it.Title == "" {
		it.Title = slug.Humanize(key)
	}
	return it, nil
}

// encode renders item, refreshing the shared header keys from the item's
// fields while keeping the positions of keys already present.
func encode(it *content.Item, withPublished bool) ([]byte, error) {
	h := frontmatter.NewHeader()
	if it.Meta != nil {
		h = it.Meta.Clone()
	}
	h.Set(content.KeyTitle, it.Title)
	if it.RemoteID != "" {
		h.Set(content.KeyRemoteID, content.IDValue(it.RemoteID))
	}
	if withPublished {
		h.Set(content.KeyPublished, it.Published)
	}
	text, err := frontmatter.Render(h, it.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrValidation, err)
	}
	return []byte(text), nil
}

// remoteItem starts a local item for r with the shared header keys set.
func remoteItem(kind content.Kind, r *content.Remote, withPublished bool) *content.Item {
	h := frontmatter.NewHeader()
	h.Set(content.KeyTitle, r.Title)
	h.Set(content.KeyRemoteID, content.IDValue(r.ID))
	if withPublished {
		h.Set(content.KeyPublished, r.Published)
	}
	return &content.Item{
		Kind:      kind,
		RemoteID:  r.ID,
		LocalKey:  r.ID,
		Title:     r.Title,
		Published: r.Published,
		Meta:      h,
	}
}

// copyToHeader copies present remote fields into h. Timestamps are
// written as wall-clock time in o.Location.
func (o Options) copyToHeader(h *frontmatter.Header, f content.Fields, keys ...string) {
	for _, k := range keys {
		v, ok := f[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && dates.IsKey(k) {
			v, _ = dates.ToLocal(s, o.Location)
		}
		h.Set(k, headerValue(v))
	}
}

// copyToFields copies header keys the author wrote into f, nulls included.
// Wall-clock timestamps are sent as UTC instants; anything else is passed
// through for the platform to judge.
func (o Options) copyToFields(f content.Fields, h *frontmatter.Header, keys ...string) {
	for _, k := range keys {
		v, ok := h.Get(k)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && dates.IsKey(k) {
			v, _ = dates.ToRemote(s, o.Location)
		}
		f[k] = fieldValue(v)
	}
}

// headerValue narrows decoded JSON numbers to integers where exact.
func headerValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = headerValue(item)
		}
		return out
	}
	return v
}

func fieldValue(v any) any {
	switch x := v.(type) {
	case *frontmatter.Header:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = fieldValue(item)
		}
		return out
	}
	return v
}

func toPortable(ctx context.Context, conv content.Converter, t links.Transformer, rich string) (string, error) {
	md, err := conv.ToPortable(ctx, rich)
	if err != nil {
		return "", fmt.Errorf("convert body: %w", err)
	}
	md = strings.TrimSpace(t.ToLocal(md))
	if md == "" {
		return "", nil
	}
	return md + "\n", nil
}

func toRich(ctx context.Context, conv content.Converter, t links.Transformer, body string) (string, error) {
	html, err := conv.ToRich(ctx, t.ToRemote(body))
	if err != nil {
		return "", fmt.Errorf("convert body: %w", err)
	}
	return html, nil
}
