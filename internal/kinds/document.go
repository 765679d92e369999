package kinds

import (
	"context"

	"github.com/abhisek/coursesync/internal/content"
)

// Document is the adapter for kinds stored as a rich-text body with a
// handful of settings: pages, discussions and assignments.
type Document struct {
	kind     content.Kind
	slugs    bool
	titleKey string
	bodyKey  string
	settings []string
	opts     Options
}

var _ content.Adapter = (*Document)(nil)

// NewPage returns the page adapter. Pages are addressed by a slug the
// platform derives from the title.
func NewPage(opts Options) *Document {
	return &Document{
		kind:     content.KindPage,
		slugs:    true,
		titleKey: "title",
		bodyKey:  "body",
		settings: []string{"front_page", "editing_roles"},
		opts:     opts,
	}
}

// NewDiscussion returns the discussion topic adapter.
func NewDiscussion(opts Options) *Document {
	return &Document{
		kind:     content.KindDiscussion,
		titleKey: "title",
		bodyKey:  "message",
		settings: []string{"pinned", "locked", "require_initial_post", "discussion_type", "delayed_post_at"},
		opts:     opts,
	}
}

// NewAssignment returns the assignment adapter.
func NewAssignment(opts Options) *Document {
	return &Document{
		kind:     content.KindAssignment,
		titleKey: "name",
		bodyKey:  "description",
		settings: []string{"points_possible", "grading_type", "submission_types", "due_at", "lock_at", "unlock_at"},
		opts:     opts,
	}
}

func (d *Document) Kind() content.Kind  { return d.kind }
func (d *Document) Ext() string         { return ".md" }
func (d *Document) SlugAddressed() bool { return d.slugs }

func (d *Document) Decode(path string, data []byte) (*content.Item, error) {
	return decode(d.kind, d.Ext(), path, data)
}

func (d *Document) Encode(it *content.Item) ([]byte, error) {
	return encode(it, true)
}

func (d *Document) FromRemote(ctx context.Context, r *content.Remote) (*content.Item, error) {
	it := remoteItem(d.kind, r, true)
	d.opts.copyToHeader(it.Meta, r.Fields, d.settings...)
	body, err := toPortable(ctx, d.opts.converter(), d.opts.Links, r.Fields.String(d.bodyKey))
	if err != nil {
		return nil, err
	}
	it.Body = body
	return it, nil
}

func (d *Document) ToRemote(ctx context.Context, it *content.Item) (content.Fields, error) {
	body, err := toRich(ctx, d.opts.converter(), d.opts.Links, it.Body)
	if err != nil {
		return nil, err
	}
	f := content.Fields{
		d.titleKey:           it.Title,
		d.bodyKey:            body,
		content.KeyPublished: it.Published,
	}
	if it.Meta != nil {
		d.opts.copyToFields(f, it.Meta, d.settings...)
	}
	return f, nil
}
