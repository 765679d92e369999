// Package config loads the course file and the remote credentials a sync
// needs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/dates"
)

// FileName is the course file at the root of every course directory.
const FileName = "course.yaml"

const (
	// FormatVersion is written into new course files.
	FormatVersion  = "v1.0.0"
	supportedMajor = "v1"
	envPrefix      = "COURSESYNC"
)

// ErrNoCourse is returned when no course file is found.
var ErrNoCourse = errors.New("no " + FileName + " found; run 'coursesync init' first")

// Course is the parsed course file.
type Course struct {
	FormatVersion string            `mapstructure:"format_version" yaml:"format_version"`
	Canvas        Canvas            `mapstructure:"canvas" yaml:"canvas"`
	Directories   map[string]string `mapstructure:"directories" yaml:"directories"`
	Sync          SyncState         `mapstructure:"sync" yaml:"sync"`

	// Settings mirrors the remote course settings, keyed by API field.
	Settings map[string]any `mapstructure:"settings" yaml:"settings,omitempty"`
	// AssignmentGroups is a read-only snapshot taken on pull.
	AssignmentGroups []map[string]any `mapstructure:"assignment_groups" yaml:"assignment_groups,omitempty"`

	// Root is the directory holding the course file.
	Root string `mapstructure:"-" yaml:"-"`
}

// Canvas identifies the remote course.
type Canvas struct {
	CourseID string `mapstructure:"course_id" yaml:"course_id"`
	Domain   string `mapstructure:"domain" yaml:"domain,omitempty"`
}

// SyncState holds the RFC 3339 timestamps of the last completed runs.
type SyncState struct {
	LastPull string `mapstructure:"last_pull" yaml:"last_pull,omitempty"`
	LastPush string `mapstructure:"last_push" yaml:"last_push,omitempty"`
}

// New returns a course rooted at root with the default directory layout.
func New(root, courseID, domain string) *Course {
	dirs := make(map[string]string)
	for _, k := range content.AllKinds() {
		dirs[k.Dir()] = k.Dir()
	}
	return &Course{
		FormatVersion: FormatVersion,
		Canvas:        Canvas{CourseID: courseID, Domain: domain},
		Directories:   dirs,
		Root:          root,
	}
}

// FindRoot walks up from start to the first directory containing the
// course file.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoCourse
		}
		dir = parent
	}
}

// Load reads the course file in root. Keys can be overridden from the
// environment, e.g. COURSESYNC_CANVAS_COURSE_ID.
func Load(root string) (*Course, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoCourse
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, content.Validationf("read %s: %v", path, err)
	}

	c := &Course{}
	if err := v.Unmarshal(c); err != nil {
		return nil, content.Validationf("decode %s: %v", path, err)
	}
	c.Root = root
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the format version and the required fields.
func (c *Course) Validate() error {
	if !semver.IsValid(c.FormatVersion) {
		return content.Validationf("format_version %q is not a semantic version", c.FormatVersion)
	}
	if semver.Major(c.FormatVersion) != supportedMajor {
		return content.Validationf("format_version %s is not supported; this build reads %s.x", c.FormatVersion, supportedMajor)
	}
	if strings.TrimSpace(c.Canvas.CourseID) == "" {
		return content.Validationf("canvas.course_id is required")
	}
	return nil
}

// Dir returns the directory holding files of kind.
func (c *Course) Dir(kind content.Kind) string {
	d := c.Directories[kind.Dir()]
	if d == "" {
		d = kind.Dir()
	}
	if filepath.IsAbs(d) {
		return d
	}
	return filepath.Join(c.Root, d)
}

// Location returns the zone of the course's wall-clock timestamps: the
// time_zone setting when there is one, otherwise the host's zone.
func (c *Course) Location() (*time.Location, error) {
	name, _ := c.Settings["time_zone"].(string)
	loc, err := dates.Location(name)
	if err != nil {
		return nil, content.Validationf("settings.time_zone: %v", err)
	}
	return loc, nil
}

// Save writes the course file back to its root.
func (c *Course) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode course file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.Root, FileName), data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	return nil
}

// MarkSynced records t as the time of the last pull or push and saves the
// course file.
func (c *Course) MarkSynced(op string, t time.Time) error {
	stamp := t.UTC().Format(time.RFC3339)
	switch op {
	case "pull":
		c.Sync.LastPull = stamp
	case "push":
		c.Sync.LastPush = stamp
	default:
		return fmt.Errorf("unknown sync op %q", op)
	}
	return c.Save()
}

// Init writes a new course file in root, creates the kind directories and
// makes sure .env is ignored by git. An existing course file is a
// conflict.
func Init(root, courseID, domain string) (*Course, error) {
	if _, err := os.Stat(filepath.Join(root, FileName)); err == nil {
		return nil, fmt.Errorf("%w: %s already exists in %s", content.ErrConflict, FileName, root)
	}
	c := New(root, courseID, domain)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	for _, k := range content.AllKinds() {
		if err := os.MkdirAll(c.Dir(k), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", content.ErrIO, err)
		}
	}
	if err := ensureIgnored(filepath.Join(root, ".gitignore"), ".env"); err != nil {
		return nil, err
	}
	if err := c.Save(); err != nil {
		return nil, err
	}
	return c, nil
}

func ensureIgnored(path, pattern string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == pattern {
			return nil
		}
	}
	text := string(data)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	text += pattern + "\n"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: %w", content.ErrIO, err)
	}
	return nil
}
