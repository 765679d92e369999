package reconcile

import (
	"errors"

	"github.com/abhisek/coursesync/internal/content"
)

// Op names a batch operation.
type Op string

const (
	OpPull   Op = "pull"
	OpPush   Op = "push"
	OpStatus Op = "status"
)

// Skip reasons.
const (
	ReasonFileExists     = "file exists"
	ReasonUpdateDisabled = "update disabled"
	ReasonCreateDisabled = "create disabled"
	ReasonHasSubmissions = "has submissions"
)

// Entry records the outcome for one item.
type Entry struct {
	ID     string
	Title  string
	Path   string
	Reason string
	Err    error
}

// Category returns the error category of the entry, or "" when it carries
// no error.
func (e Entry) Category() string {
	if e.Err == nil {
		return ""
	}
	return content.Category(e.Err)
}

// Report accumulates per-item outcomes of one batch.
type Report struct {
	Kind    content.Kind
	Op      Op
	Created []Entry
	Updated []Entry
	Skipped []Entry
	Errors  []Entry
}

func newReport(kind content.Kind, op Op) *Report {
	return &Report{Kind: kind, Op: op}
}

// Total returns the number of recorded entries across all buckets.
func (r *Report) Total() int {
	return len(r.Created) + len(r.Updated) + len(r.Skipped) + len(r.Errors)
}

// Err joins the recorded item errors, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, &content.ItemError{
			Op:    string(r.Op),
			Kind:  r.Kind,
			ID:    e.ID,
			Title: e.Title,
			Path:  e.Path,
			Err:   e.Err,
		})
	}
	return errors.Join(errs...)
}

// Conflicts returns the error and skip entries whose category is conflict.
func (r *Report) Conflicts() []Entry {
	var out []Entry
	for _, bucket := range [][]Entry{r.Errors, r.Skipped} {
		for _, e := range bucket {
			if e.Category() == content.CategoryConflict {
				out = append(out, e)
			}
		}
	}
	return out
}

func entryFor(it *content.Item) Entry {
	return Entry{ID: it.RemoteID, Title: it.Title, Path: it.Path}
}
