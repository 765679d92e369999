package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abhisek/coursesync/internal/content"
)

// Environment variables holding the remote credentials.
const (
	EnvToken  = "CANVAS_API_TOKEN"
	EnvDomain = "CANVAS_DOMAIN"
)

var domainPattern = regexp.MustCompile(`^[a-z0-9.-]+(:\d+)?$`)

// Credentials authenticate against the remote platform.
type Credentials struct {
	Token  string
	Domain string
}

// EnvFiles lists the .env files consulted for dir, highest precedence
// first: dir itself, each parent up to the filesystem root, then
// ~/.coursesync.env. Only existing files are returned.
func EnvFiles(dir string) []string {
	var candidates []string
	if abs, err := filepath.Abs(dir); err == nil {
		for d := abs; ; d = filepath.Dir(d) {
			candidates = append(candidates, filepath.Join(d, ".env"))
			if filepath.Dir(d) == d {
				break
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".coursesync.env"))
	}

	var out []string
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// LoadEnv loads the .env files for dir into the process environment.
// Variables already set are never overridden, so earlier files win over
// later ones and the real environment wins over all of them.
func LoadEnv(dir string) error {
	files := EnvFiles(dir)
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return content.Validationf("load env files: %v", err)
	}
	return nil
}

// LoadCredentials loads the .env files for the course and reads the token
// and domain. The course file's domain is used when the environment has
// none.
func LoadCredentials(c *Course) (Credentials, error) {
	if err := LoadEnv(c.Root); err != nil {
		return Credentials{}, err
	}
	token := strings.TrimSpace(os.Getenv(EnvToken))
	if token == "" {
		return Credentials{}, content.Validationf("%s is not set", EnvToken)
	}
	raw := os.Getenv(EnvDomain)
	if strings.TrimSpace(raw) == "" {
		raw = c.Canvas.Domain
	}
	if strings.TrimSpace(raw) == "" {
		return Credentials{}, content.Validationf("%s is not set", EnvDomain)
	}
	domain, err := NormalizeDomain(raw)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, Domain: domain}, nil
}

// NormalizeDomain strips a scheme and trailing slashes from s and checks
// that what remains is a bare host with an optional port.
func NormalizeDomain(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimRight(d, "/")
	if !domainPattern.MatchString(d) {
		return "", content.Validationf("%s %q is not a host name", EnvDomain, s)
	}
	return d, nil
}

// String hides the token.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Domain: %s, Token: ***}", c.Domain)
}
