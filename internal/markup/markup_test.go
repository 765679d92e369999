package markup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	var c Passthrough
	out, err := c.ToPortable(ctx, "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", out)
	out, err = c.ToRich(ctx, "*x*")
	require.NoError(t, err)
	assert.Equal(t, "*x*", out)
}

func TestPandocUnavailable(t *testing.T) {
	p := &Pandoc{Path: "coursesync-no-such-pandoc"}
	assert.False(t, p.Available())

	_, err := p.ToRich(context.Background(), "# hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, content.CategoryTransport, content.Category(err))

	out, err := p.ToRich(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPandocRoundTrip(t *testing.T) {
	p := NewPandoc()
	if !p.Available() {
		t.Skip("pandoc not installed")
	}
	ctx := context.Background()

	html, err := p.ToRich(ctx, "Some **bold** text")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")

	md, err := p.ToPortable(ctx, html)
	require.NoError(t, err)
	assert.Equal(t, "Some **bold** text", strings.TrimSpace(md))
}
