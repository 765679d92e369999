package kinds

import (
	"context"
	"fmt"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/frontmatter"
	"github.com/abhisek/coursesync/internal/idalign"
)

var (
	moduleSettings = []string{"position", "unlock_at", "require_sequential_progress"}
	moduleItemKeys = []string{"type", "title", "content_id", "page_url", "external_url", "indent"}
)

// Module is the adapter for modules. Module items are a list of flat dicts
// in the header.
type Module struct {
	opts Options
}

var (
	_ content.Adapter = (*Module)(nil)
	_ content.Aligner = (*Module)(nil)
)

// NewModule returns the module adapter.
func NewModule(opts Options) *Module { return &Module{opts: opts} }

func (m *Module) Kind() content.Kind  { return content.KindModule }
func (m *Module) Ext() string         { return ".md" }
func (m *Module) SlugAddressed() bool { return false }

func (m *Module) Decode(path string, data []byte) (*content.Item, error) {
	return decode(content.KindModule, m.Ext(), path, data)
}

func (m *Module) Encode(it *content.Item) ([]byte, error) {
	return encode(it, true)
}

func (m *Module) FromRemote(_ context.Context, r *content.Remote) (*content.Item, error) {
	it := remoteItem(content.KindModule, r, true)
	m.opts.copyToHeader(it.Meta, r.Fields, moduleSettings...)

	items := make([]*frontmatter.Header, 0)
	for _, ri := range r.Fields.Maps("items") {
		d := frontmatter.NewHeader()
		d.Set("id", content.IDValue(ri.String("id")))
		for _, k := range moduleItemKeys {
			if v, ok := ri[k]; ok && v != nil {
				d.Set(k, headerValue(v))
			}
		}
		items = append(items, d)
	}
	it.Meta.Set("items", items)
	return it, nil
}

func (m *Module) ToRemote(_ context.Context, it *content.Item) (content.Fields, error) {
	var items []map[string]any
	for _, d := range it.Meta.Dicts("items") {
		items = append(items, element(d))
	}
	f := content.Fields{
		"name":               it.Title,
		content.KeyPublished: it.Published,
		"items":              items,
	}
	m.opts.copyToFields(f, it.Meta, moduleSettings...)
	return f, nil
}

// Align copies the identifiers of created module items back onto the local
// item dicts.
func (m *Module) Align(it *content.Item, r *content.Remote) (bool, error) {
	var local []idalign.Element
	for _, d := range it.Meta.Dicts("items") {
		local = append(local, idalign.Element{ID: d.String("id"), Assign: assignID(d)})
	}
	var remote []idalign.Element
	for _, ri := range r.Fields.Maps("items") {
		remote = append(remote, idalign.Element{ID: ri.String("id")})
	}
	mapping, err := idalign.Align(local, remote)
	if err != nil {
		return false, fmt.Errorf("align module %s: %w", it.LocalKey, err)
	}
	return idalign.Changed(mapping, local), nil
}
