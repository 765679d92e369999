package kinds

import (
	"context"
	"fmt"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/frontmatter"
	"github.com/abhisek/coursesync/internal/idalign"
)

// Rubric is the adapter for rubrics. Criteria and ratings live in the
// header as two lists of flat dicts; each rating names its criterion by
// 1-based position.
type Rubric struct {
	opts Options
}

var (
	_ content.Adapter = (*Rubric)(nil)
	_ content.Aligner = (*Rubric)(nil)
)

// NewRubric returns the rubric adapter.
func NewRubric(opts Options) *Rubric { return &Rubric{opts: opts} }

func (r *Rubric) Kind() content.Kind  { return content.KindRubric }
func (r *Rubric) Ext() string         { return ".md" }
func (r *Rubric) SlugAddressed() bool { return false }

func (r *Rubric) Decode(path string, data []byte) (*content.Item, error) {
	it, err := decode(content.KindRubric, r.Ext(), path, data)
	if err != nil {
		return nil, err
	}
	if _, err := criteria(it.Meta); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *Rubric) Encode(it *content.Item) ([]byte, error) {
	return encode(it, false)
}

func (r *Rubric) FromRemote(_ context.Context, rem *content.Remote) (*content.Item, error) {
	it := remoteItem(content.KindRubric, rem, false)
	r.opts.copyToHeader(it.Meta, rem.Fields, "assignment_id", "free_form_criterion_comments")

	var crits, ratings []*frontmatter.Header
	for i, c := range rem.Fields.Maps("criteria") {
		d := frontmatter.NewHeader()
		d.Set("id", content.IDValue(c.String("id")))
		d.Set("description", c.String("description"))
		if long := c.String("long_description"); long != "" {
			d.Set("long_description", long)
		}
		points, _ := c.Float("points")
		d.Set("points", points)
		crits = append(crits, d)

		for _, rt := range c.Maps("ratings") {
			rd := frontmatter.NewHeader()
			rd.Set("criterion", i+1)
			rd.Set("id", content.IDValue(rt.String("id")))
			rd.Set("description", rt.String("description"))
			if long := rt.String("long_description"); long != "" {
				rd.Set("long_description", long)
			}
			points, _ := rt.Float("points")
			rd.Set("points", points)
			ratings = append(ratings, rd)
		}
	}
	it.Meta.Set("criteria", crits)
	it.Meta.Set("ratings", ratings)
	return it, nil
}

// ToRemote nests each criterion's ratings under it. The body is local
// notes and is not sent.
func (r *Rubric) ToRemote(_ context.Context, it *content.Item) (content.Fields, error) {
	refs, err := criteria(it.Meta)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(refs))
	for _, c := range refs {
		m := element(c.dict)
		ratings := make([]map[string]any, 0, len(c.ratings))
		for _, rt := range c.ratings {
			rm := element(rt)
			delete(rm, "criterion")
			ratings = append(ratings, rm)
		}
		m["ratings"] = ratings
		out = append(out, m)
	}
	f := content.Fields{
		"title":    it.Title,
		"criteria": out,
	}
	r.opts.copyToFields(f, it.Meta, "assignment_id", "free_form_criterion_comments")
	return f, nil
}

// Align copies the identifiers the platform assigned to criteria and their
// ratings back onto the local dicts.
func (r *Rubric) Align(it *content.Item, rem *content.Remote) (bool, error) {
	refs, err := criteria(it.Meta)
	if err != nil {
		return false, err
	}
	local := make([]idalign.Element, len(refs))
	for i, c := range refs {
		el := idalign.Element{ID: c.dict.String("id"), Assign: assignID(c.dict)}
		for _, rt := range c.ratings {
			el.Children = append(el.Children, idalign.Element{ID: rt.String("id"), Assign: assignID(rt)})
		}
		local[i] = el
	}

	var remote []idalign.Element
	for _, c := range rem.Fields.Maps("criteria") {
		el := idalign.Element{ID: c.String("id")}
		for _, rt := range c.Maps("ratings") {
			el.Children = append(el.Children, idalign.Element{ID: rt.String("id")})
		}
		remote = append(remote, el)
	}

	m, err := idalign.Align(local, remote)
	if err != nil {
		return false, fmt.Errorf("align rubric %s: %w", it.LocalKey, err)
	}
	return idalign.Changed(m, local), nil
}

type criterion struct {
	dict    *frontmatter.Header
	ratings []*frontmatter.Header
}

func criteria(h *frontmatter.Header) ([]criterion, error) {
	dicts := h.Dicts("criteria")
	out := make([]criterion, len(dicts))
	for i, d := range dicts {
		out[i].dict = d
	}
	for j, rt := range h.Dicts("ratings") {
		n, ok := rt.Int("criterion")
		if !ok || n < 1 || int(n) > len(out) {
			return nil, content.Validationf("rating %d refers to criterion %q, but there are %d criteria",
				j+1, rt.String("criterion"), len(out))
		}
		out[n-1].ratings = append(out[n-1].ratings, rt)
	}
	return out, nil
}

// element converts a flat dict to a payload map, dropping empty ids.
func element(d *frontmatter.Header) map[string]any {
	m := d.Map()
	if d.String("id") == "" {
		delete(m, "id")
	}
	return m
}

func assignID(d *frontmatter.Header) func(string) {
	return func(id string) {
		if id != "" {
			d.Set("id", content.IDValue(id))
		}
	}
}
