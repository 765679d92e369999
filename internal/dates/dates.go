// Package dates converts between the wall-clock timestamps authors write in
// headers ("2026-01-16 23:59:00") and the ISO 8601 instants the platform
// exchanges.
package dates

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// LocalLayout is the form timestamps take in local files.
const LocalLayout = "2006-01-02 15:04:05"

// localLayouts are accepted on input, most specific first.
var localLayouts = []string{
	LocalLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var keys = map[string]bool{
	"due_at":          true,
	"lock_at":         true,
	"unlock_at":       true,
	"delayed_post_at": true,
	"start_at":        true,
	"end_at":          true,
}

// IsKey reports whether header key holds a timestamp.
func IsKey(key string) bool { return keys[key] }

// Location resolves an IANA zone name. The empty name is the host's zone.
func Location(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", name, err)
	}
	return loc, nil
}

// ToRemote turns a local wall-clock timestamp in loc into a UTC instant
// such as "2026-01-17T04:59:00Z". Values that already carry an offset are
// normalized to UTC. ok is false, and s is returned unchanged, when s is
// not a timestamp.
func ToRemote(s string, loc *time.Location) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return s, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return s, false
}

// ToLocal turns an ISO 8601 instant into wall-clock time in loc. ok is
// false, and s is returned unchanged, when s is not an instant.
func ToLocal(s string, loc *time.Location) (string, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return s, false
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LocalLayout), true
}
