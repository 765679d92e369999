package report

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursesync/internal/reconcile"
	"github.com/abhisek/coursesync/internal/ui/theme"
)

// Setting is the serializable form of one compared course setting.
type Setting struct {
	Field  string `json:"field" yaml:"field"`
	Local  any    `json:"local,omitempty" yaml:"local,omitempty"`
	Remote any    `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Course is the serializable form of a course settings report.
type Course struct {
	Op         string    `json:"op" yaml:"op"`
	DryRun     bool      `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Written    bool      `json:"written" yaml:"written"`
	Synced     []Setting `json:"synced" yaml:"synced"`
	Differs    []Setting `json:"differs" yaml:"differs"`
	Conflicts  []Setting `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	RemoteOnly []Setting `json:"remote_only" yaml:"remote_only"`
	LocalOnly  []Setting `json:"local_only" yaml:"local_only"`
	Groups     int       `json:"assignment_groups,omitempty" yaml:"assignment_groups,omitempty"`
	Errors     []string  `json:"errors" yaml:"errors"`
}

// FromCourse converts a course settings report.
func FromCourse(r *reconcile.CourseReport) Course {
	c := Course{
		Op:         string(r.Op),
		DryRun:     r.DryRun,
		Written:    r.Written,
		Synced:     settings(r.Synced),
		Differs:    settings(r.Differs),
		Conflicts:  settings(r.Conflicts()),
		RemoteOnly: settings(r.RemoteOnly),
		LocalOnly:  settings(r.LocalOnly),
		Groups:     r.Groups,
		Errors:     make([]string, 0, len(r.Errors)),
	}
	for _, err := range r.Errors {
		c.Errors = append(c.Errors, err.Error())
	}
	return c
}

func settings(in []reconcile.SettingDiff) []Setting {
	out := make([]Setting, 0, len(in))
	for _, d := range in {
		out = append(out, Setting{Field: d.Field, Local: d.Local, Remote: d.Remote})
	}
	return out
}

// WriteCourse renders c as styled text. Synced settings are counted, not
// listed.
func WriteCourse(w io.Writer, c Course) {
	w = terminal(w)
	title := fmt.Sprintf("course %s: %d synced, %d differ, %d remote only, %d local only",
		c.Op, len(c.Synced), len(c.Differs), len(c.RemoteOnly), len(c.LocalOnly))
	if c.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, theme.Title.Render(title))

	conflicting := make(map[string]bool, len(c.Conflicts))
	for _, s := range c.Conflicts {
		conflicting[s.Field] = true
	}
	for _, s := range c.Differs {
		style, label := theme.Updated, "differs"
		if conflicting[s.Field] {
			style, label = theme.Failed, "conflict"
		}
		settingLine(w, style, label, s.Field, fmt.Sprintf("%s -> %s", show(s.Remote), show(s.Local)))
	}
	for _, s := range c.RemoteOnly {
		settingLine(w, theme.Skipped, "remote", s.Field, show(s.Remote))
	}
	for _, s := range c.LocalOnly {
		settingLine(w, theme.Created, "local", s.Field, show(s.Local))
	}
	if c.Groups > 0 {
		fmt.Fprintln(w, theme.Indent.Render(theme.Hint.Render(fmt.Sprintf("%d assignment groups recorded", c.Groups))))
	}
	for _, e := range c.Errors {
		settingLine(w, theme.Failed, "error", "", e)
	}
}

func settingLine(w io.Writer, style lipgloss.Style, label, field, detail string) {
	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%-8s", label)))
	b.WriteString(" ")
	if field != "" {
		b.WriteString(field)
		b.WriteString(" ")
	}
	b.WriteString(theme.Hint.Render(detail))
	fmt.Fprintln(w, theme.Indent.Render(b.String()))
}

// show abbreviates a setting value for one line of text.
func show(v any) string {
	if v == nil {
		return "(unset)"
	}
	s := strings.ReplaceAll(fmt.Sprint(v), "\n", " ")
	if r := []rune(s); len(r) > 60 {
		s = string(r[:57]) + "..."
	}
	return s
}
