// Package markup converts between the platform's HTML and local markdown.
package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/abhisek/coursesync/internal/content"
)

// ErrUnavailable is returned when the converter binary cannot be found.
var ErrUnavailable = errors.New("pandoc is not installed; install it with your package manager (apt install pandoc, brew install pandoc)")

// Pandoc converts text by running the pandoc binary.
type Pandoc struct {
	// Path is the binary to run. Defaults to "pandoc" on PATH.
	Path string
}

var _ content.Converter = (*Pandoc)(nil)

// NewPandoc returns a converter using the pandoc found on PATH.
func NewPandoc() *Pandoc {
	return &Pandoc{Path: "pandoc"}
}

// Available reports whether the pandoc binary can be found.
func (p *Pandoc) Available() bool {
	_, err := exec.LookPath(p.bin())
	return err == nil
}

// ToPortable converts HTML to markdown without line wrapping.
func (p *Pandoc) ToPortable(ctx context.Context, rich string) (string, error) {
	if strings.TrimSpace(rich) == "" {
		return "", nil
	}
	out, err := p.run(ctx, rich, "-f", "html", "-t", "markdown", "--wrap=none")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// ToRich converts markdown to an HTML fragment.
func (p *Pandoc) ToRich(ctx context.Context, portable string) (string, error) {
	if strings.TrimSpace(portable) == "" {
		return "", nil
	}
	out, err := p.run(ctx, portable, "-f", "markdown", "-t", "html")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (p *Pandoc) bin() string {
	if p.Path == "" {
		return "pandoc"
	}
	return p.Path
}

func (p *Pandoc) run(ctx context.Context, input string, args ...string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: %w", content.ErrTransport, ErrUnavailable)
	}
	cmd := exec.CommandContext(ctx, p.bin(), args...)
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: pandoc %s: %v: %s", content.ErrTransport, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Passthrough returns text unchanged in both directions. It backs
// --no-convert runs where bodies are stored as the platform's HTML.
type Passthrough struct{}

var _ content.Converter = Passthrough{}

func (Passthrough) ToPortable(_ context.Context, rich string) (string, error) { return rich, nil }
func (Passthrough) ToRich(_ context.Context, portable string) (string, error) { return portable, nil }
