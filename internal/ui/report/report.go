// Package report renders sync reports, status listings and journal
// history for the terminal or as structured data.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/coursesync/internal/reconcile"
	"github.com/abhisek/coursesync/internal/store"
	"github.com/abhisek/coursesync/internal/ui/theme"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Entry is the serializable form of one item outcome.
type Entry struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Batch is the serializable form of a pull or push report.
type Batch struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Op      string  `json:"op" yaml:"op"`
	Created []Entry `json:"created" yaml:"created"`
	Updated []Entry `json:"updated" yaml:"updated"`
	Skipped []Entry `json:"skipped" yaml:"skipped"`
	Errors  []Entry `json:"errors" yaml:"errors"`
}

// Status is the serializable form of a status report.
type Status struct {
	Kind       string  `json:"kind" yaml:"kind"`
	Synced     []Entry `json:"synced" yaml:"synced"`
	RemoteOnly []Entry `json:"remote_only" yaml:"remote_only"`
	LocalOnly  []Entry `json:"local_only" yaml:"local_only"`
	Errors     []Entry `json:"errors" yaml:"errors"`
}

// FromReport converts an engine report.
func FromReport(r *reconcile.Report) Batch {
	return Batch{
		Kind:    r.Kind.String(),
		Op:      string(r.Op),
		Created: entries(r.Created),
		Updated: entries(r.Updated),
		Skipped: entries(r.Skipped),
		Errors:  entries(r.Errors),
	}
}

// FromStatus converts an engine status report.
func FromStatus(s *reconcile.StatusReport) Status {
	return Status{
		Kind:       s.Kind.String(),
		Synced:     statusEntries(s.Synced),
		RemoteOnly: statusEntries(s.RemoteOnly),
		LocalOnly:  statusEntries(s.LocalOnly),
		Errors:     entries(s.Errors),
	}
}

func entries(in []reconcile.Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		v := Entry{ID: e.ID, Title: e.Title, Path: e.Path, Reason: e.Reason}
		if e.Err != nil {
			v.Category = e.Category()
			v.Error = e.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

func statusEntries(in []reconcile.StatusEntry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		out = append(out, Entry{ID: e.ID, Title: e.Title, Path: e.Path})
	}
	return out
}

// Journal returns the journal rows for b, bucket by bucket.
func Journal(b Batch) []store.Item {
	var out []store.Item
	add := func(bucket string, es []Entry) {
		for _, e := range es {
			out = append(out, store.Item{
				Bucket:   bucket,
				ItemID:   e.ID,
				Title:    e.Title,
				Path:     e.Path,
				Reason:   e.Reason,
				Category: e.Category,
				Message:  e.Error,
			})
		}
	}
	add(store.BucketCreated, b.Created)
	add(store.BucketUpdated, b.Updated)
	add(store.BucketSkipped, b.Skipped)
	add(store.BucketError, b.Errors)
	return out
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// WriteBatch renders b as styled text.
func WriteBatch(w io.Writer, b Batch) {
	w = terminal(w)
	title := fmt.Sprintf("%s %s: %d created, %d updated, %d skipped, %d errors",
		b.Op, b.Kind, len(b.Created), len(b.Updated), len(b.Skipped), len(b.Errors))
	fmt.Fprintln(w, theme.Title.Render(title))
	section(w, theme.Created, "created", b.Created)
	section(w, theme.Updated, "updated", b.Updated)
	section(w, theme.Skipped, "skipped", b.Skipped)
	section(w, theme.Failed, "error", b.Errors)
}

// WriteStatus renders s as styled text.
func WriteStatus(w io.Writer, s Status) {
	w = terminal(w)
	title := fmt.Sprintf("%s: %d synced, %d remote only, %d local only",
		s.Kind, len(s.Synced), len(s.RemoteOnly), len(s.LocalOnly))
	fmt.Fprintln(w, theme.Title.Render(title))
	section(w, theme.Skipped, "remote", s.RemoteOnly)
	section(w, theme.Created, "local", s.LocalOnly)
	section(w, theme.Failed, "error", s.Errors)
}

// WriteHistory renders journal runs, newest first.
func WriteHistory(w io.Writer, runs []store.Run) {
	w = terminal(w)
	if len(runs) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("no runs recorded"))
		return
	}
	for _, r := range runs {
		counts := fmt.Sprintf("+%d ~%d =%d", r.Created, r.Updated, r.Skipped)
		errs := theme.Hint.Render("0 errors")
		if r.Errors > 0 {
			errs = theme.Failed.Render(fmt.Sprintf("%d errors", r.Errors))
		}
		fmt.Fprintf(w, "%s  %s %-4s %-11s %s  %s\n",
			theme.Hint.Render(r.StartedAt.Local().Format("2006-01-02 15:04:05")),
			theme.Title.Render(shortID(r.ID)),
			r.Op, r.Kind, theme.Body.Render(counts), errs)
	}
}

// WriteItems renders the recorded outcomes of one run.
func WriteItems(w io.Writer, items []store.Item) {
	w = terminal(w)
	styles := map[string]lipgloss.Style{
		store.BucketCreated: theme.Created,
		store.BucketUpdated: theme.Updated,
		store.BucketSkipped: theme.Skipped,
		store.BucketError:   theme.Failed,
	}
	for _, it := range items {
		e := Entry{ID: it.ItemID, Title: it.Title, Path: it.Path, Reason: it.Reason, Category: it.Category, Error: it.Message}
		section(w, styles[it.Bucket], it.Bucket, []Entry{e})
	}
}

// terminal downsamples styled output to what w supports, dropping colors
// entirely when w is not a terminal.
func terminal(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func section(w io.Writer, style lipgloss.Style, label string, es []Entry) {
	for _, e := range es {
		var b strings.Builder
		b.WriteString(style.Render(fmt.Sprintf("%-7s", label)))
		b.WriteString(" ")
		b.WriteString(name(e))
		if e.Reason != "" {
			b.WriteString(theme.Hint.Render(" (" + e.Reason + ")"))
		}
		if e.Error != "" {
			b.WriteString(theme.Hint.Render(" [" + e.Category + "] "))
			b.WriteString(e.Error)
		}
		fmt.Fprintln(w, theme.Indent.Render(b.String()))
	}
}

func name(e Entry) string {
	switch {
	case e.Path != "" && e.Title != "":
		return fmt.Sprintf("%s %s", e.Title, theme.Hint.Render(e.Path))
	case e.Path != "":
		return e.Path
	case e.Title != "":
		return e.Title
	}
	return e.ID
}
