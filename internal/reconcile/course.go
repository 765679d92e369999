package reconcile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cast"

	"github.com/abhisek/coursesync/internal/config"
	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/dates"
)

// SettingFrontPage names the course's front page by its page identifier.
const SettingFrontPage = "front_page"

// EditableSettings are the course settings a push may change, in the order
// they are compared.
var EditableSettings = []string{
	"name", "course_code", "default_view", SettingFrontPage,
	"syllabus_body", "public_syllabus", "public_syllabus_to_auth",
	"start_at", "end_at", "time_zone", "restrict_enrollments_to_course_dates",
	"is_public", "is_public_to_auth_users", "license",
	"hide_final_grades", "apply_assignment_group_weights",
}

// ReadOnlySettings are recorded on pull for reference and never pushed.
var ReadOnlySettings = []string{"id", "account_id", "uuid", "workflow_state", "created_at"}

// ErrNoCourseSettings is returned when the client cannot read or write
// course settings.
var ErrNoCourseSettings = errors.New("client does not support course settings")

// CourseOptions controls PullCourse and PushCourse.
type CourseOptions struct {
	// Overwrite lets a pull replace local settings that differ from the
	// platform.
	Overwrite bool
	// DryRun makes a push report its changes without sending them.
	DryRun bool
}

// SettingDiff is one course setting as seen on both sides. Values are in
// their local form: timestamps are wall-clock time in the course zone.
type SettingDiff struct {
	Field  string
	Local  any
	Remote any
}

// CourseReport partitions course settings by how the two sides compare.
type CourseReport struct {
	Op     Op
	DryRun bool
	Synced []SettingDiff
	// Differs holds settings set on both sides to different values. A push
	// sends these.
	Differs    []SettingDiff
	RemoteOnly []SettingDiff
	LocalOnly  []SettingDiff
	// Groups is the number of assignment groups recorded by a pull.
	Groups int
	// Written reports whether the course file (pull) or the platform
	// (push) was changed.
	Written bool
	Errors  []error
}

// Conflicts returns the editable settings a pull would overwrite: those
// the author set locally to a value the platform does not hold.
func (r *CourseReport) Conflicts() []SettingDiff {
	if r.Op != OpPull {
		return nil
	}
	var out []SettingDiff
	for _, d := range r.Differs {
		if d.Local != nil && slices.Contains(EditableSettings, d.Field) {
			out = append(out, d)
		}
	}
	return out
}

// Err reports settings that could not be written and, for a pull held
// back by conflicts, the conflict itself.
func (r *CourseReport) Err() error {
	errs := slices.Clone(r.Errors)
	if n := len(r.Conflicts()); n > 0 && !r.Written {
		errs = append(errs, fmt.Errorf("%w: %d course settings differ from the platform; pull with --overwrite to replace them", content.ErrConflict, n))
	}
	return errors.Join(errs...)
}

func (e *Engine) courseClient() (content.CourseClient, error) {
	cc, ok := e.Client.(content.CourseClient)
	if !ok {
		return nil, ErrNoCourseSettings
	}
	return cc, nil
}

// PullCourse copies the platform's course settings and assignment groups
// into the course file. When a locally set value differs from the
// platform's, nothing is written unless opts.Overwrite is set.
func (e *Engine) PullCourse(ctx context.Context, c *config.Course, opts CourseOptions) (*CourseReport, error) {
	log := ctxlog.FromContext(ctx).With("op", OpPull, "kind", "course")
	cc, err := e.courseClient()
	if err != nil {
		return nil, err
	}
	remote, err := cc.GetCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	groups, err := cc.AssignmentGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignment groups: %w", err)
	}
	loc, err := remoteLocation(remote, c)
	if err != nil {
		return nil, err
	}

	pulled := localForm(remote, loc)
	rep := compareSettings(OpPull, c.Settings, pulled, loc)
	rep.Groups = len(groups)
	if n := len(rep.Conflicts()); n > 0 && !opts.Overwrite {
		log.Warn("course settings differ; keeping local file", "conflicts", n)
		return rep, nil
	}

	settings := make(map[string]any, len(pulled))
	maps.Copy(settings, c.Settings)
	maps.Copy(settings, pulled)
	c.Settings = settings
	c.AssignmentGroups = make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		c.AssignmentGroups = append(c.AssignmentGroups, map[string]any(g))
	}
	if err := c.MarkSynced(string(OpPull), time.Now()); err != nil {
		return nil, err
	}
	rep.Written = true
	log.Info("pull complete", "settings", len(pulled), "groups", len(groups))
	return rep, nil
}

// PushCourse sends the editable settings that differ from the platform.
// The front page is set through the page itself; an empty local
// front_page is left alone.
func (e *Engine) PushCourse(ctx context.Context, c *config.Course, opts CourseOptions) (*CourseReport, error) {
	log := ctxlog.FromContext(ctx).With("op", OpPush, "kind", "course")
	cc, err := e.courseClient()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	remote, err := cc.GetCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	local := make(map[string]any)
	for _, k := range EditableSettings {
		v, ok := c.Settings[k]
		if !ok || (k == SettingFrontPage && cast.ToString(v) == "") {
			continue
		}
		local[k] = v
	}
	rep := compareSettings(OpPush, local, localForm(remote, loc), loc)
	rep.DryRun = opts.DryRun
	rep.RemoteOnly = nil

	updates := content.Fields{}
	var front string
	for _, d := range append(slices.Clone(rep.Differs), rep.LocalOnly...) {
		if d.Field == SettingFrontPage {
			front = cast.ToString(d.Local)
			continue
		}
		updates[d.Field] = remoteValue(d.Field, d.Local, loc)
	}
	if opts.DryRun {
		log.Info("dry run", "changes", len(rep.Differs)+len(rep.LocalOnly))
		return rep, nil
	}

	if len(updates) > 0 {
		if _, err := cc.UpdateCourse(ctx, updates); err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("update course settings: %w", err))
		} else {
			rep.Written = true
		}
	}
	if front != "" {
		if err := cc.SetFrontPage(ctx, front); err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("set front page %s: %w", front, err))
		} else {
			rep.Written = true
		}
	}
	for _, err := range rep.Errors {
		log.Warn("course setting failed", "category", content.Category(err), "error", err)
	}
	if len(rep.Errors) == 0 {
		if err := c.MarkSynced(string(OpPush), time.Now()); err != nil {
			log.Warn("record sync time", "error", err)
		}
	}
	log.Info("push complete", "changes", len(updates), "front_page", front != "", "errors", len(rep.Errors))
	return rep, nil
}

// CourseStatus compares the course file's settings with the platform. It
// writes nothing.
func (e *Engine) CourseStatus(ctx context.Context, c *config.Course) (*CourseReport, error) {
	cc, err := e.courseClient()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	remote, err := cc.GetCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return compareSettings(OpStatus, c.Settings, localForm(remote, loc), loc), nil
}

// compareSettings partitions the union of both key sets. Known settings
// come first in their fixed order, then any other local keys sorted.
func compareSettings(op Op, local, remote map[string]any, loc *time.Location) *CourseReport {
	rep := &CourseReport{Op: op}
	keys := append(slices.Clone(EditableSettings), ReadOnlySettings...)
	var extra []string
	for k := range local {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)

	for _, k := range append(keys, extra...) {
		lv, inLocal := local[k]
		rv, inRemote := remote[k]
		d := SettingDiff{Field: k, Local: lv, Remote: rv}
		switch {
		case inLocal && inRemote && settingEqual(k, lv, rv, loc):
			rep.Synced = append(rep.Synced, d)
		case inLocal && inRemote:
			rep.Differs = append(rep.Differs, d)
		case inRemote:
			rep.RemoteOnly = append(rep.RemoteOnly, d)
		case inLocal:
			rep.LocalOnly = append(rep.LocalOnly, d)
		}
	}
	return rep
}

// localForm picks the known settings out of a course response, turning
// timestamps into wall-clock time in loc. Settings the response lacks are
// left out.
func localForm(remote content.Fields, loc *time.Location) map[string]any {
	out := make(map[string]any)
	for _, k := range append(slices.Clone(EditableSettings), ReadOnlySettings...) {
		v, ok := remote[k]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && dates.IsKey(k) {
			v, _ = dates.ToLocal(s, loc)
		}
		out[k] = plainNumber(v)
	}
	return out
}

func remoteValue(key string, v any, loc *time.Location) any {
	if s, isString := v.(string); isString && dates.IsKey(key) {
		out, _ := dates.ToRemote(s, loc)
		return out
	}
	return v
}

// remoteLocation is the zone the platform reports for the course, falling
// back to the course file's.
func remoteLocation(remote content.Fields, c *config.Course) (*time.Location, error) {
	if name := remote.String("time_zone"); name != "" {
		if loc, err := dates.Location(name); err == nil {
			return loc, nil
		}
	}
	return c.Location()
}

// settingEqual compares values decoded from YAML and JSON: numbers compare
// by value and timestamps by instant.
func settingEqual(key string, a, b any, loc *time.Location) bool {
	if dates.IsKey(key) {
		return cmp.Equal(remoteValue(key, a, loc), remoteValue(key, b, loc))
	}
	return cmp.Equal(numbersAsFloat(a), numbersAsFloat(b))
}

// plainNumber narrows integral JSON numbers so they are written to the
// course file as integers.
func plainNumber(v any) any {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

func numbersAsFloat(v any) any {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToFloat64(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = numbersAsFloat(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = numbersAsFloat(item)
		}
		return out
	}
	return v
}
