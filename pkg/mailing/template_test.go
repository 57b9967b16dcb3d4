package mailing

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestParseTemplateSource(t *testing.T) {
	t.Parallel()

	t.Run("no frontmatter", func(t *testing.T) {
		t.Parallel()
		src, err := parseTemplateSource([]byte("<p>Hello</p>"))
		require.NoError(t, err)
		require.Equal(t, "<p>Hello</p>", src.body)
		require.Empty(t, src.meta.Subject)
	})

	t.Run("frontmatter with subject and headers", func(t *testing.T) {
		t.Parallel()
		content := []byte("---\nsubject: Welcome {{ .name }}\nheaders:\n  Reply-To: support@example.com\n---\n<p>Body</p>")
		src, err := parseTemplateSource(content)
		require.NoError(t, err)
		require.Equal(t, "Welcome {{ .name }}", src.meta.Subject)
		require.Equal(t, "support@example.com", src.meta.Headers["Reply-To"])
		require.Equal(t, "<p>Body</p>", src.body)
	})

	t.Run("unterminated frontmatter", func(t *testing.T) {
		t.Parallel()
		_, err := parseTemplateSource([]byte("---\nsubject: Broken\n<p>Body</p>"))
		require.Error(t, err)
	})
}

func TestTemplateSet_CampaignTemplate(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"welcome.html":         {Data: []byte("<p>Welcome!</p>")},
		"custom/onboard.html":  {Data: []byte("<p>Onboarding</p>")},
		"with_frontmatter.html": {Data: []byte("---\nsubject: From file\n---\n<p>Hi</p>")},
	}
	ts := newTemplateSet(fsys)

	t.Run("inline source wins", func(t *testing.T) {
		t.Parallel()
		src, err := ts.campaignTemplate(&Campaign{Key: "welcome", TemplateSource: "<p>Inline</p>"})
		require.NoError(t, err)
		require.Equal(t, "<p>Inline</p>", src.body)
	})

	t.Run("explicit template file", func(t *testing.T) {
		t.Parallel()
		src, err := ts.campaignTemplate(&Campaign{Key: "welcome", TemplateFile: "custom/onboard.html"})
		require.NoError(t, err)
		require.Equal(t, "<p>Onboarding</p>", src.body)
	})

	t.Run("key.html convention", func(t *testing.T) {
		t.Parallel()
		src, err := ts.campaignTemplate(&Campaign{Key: "welcome"})
		require.NoError(t, err)
		require.Equal(t, "<p>Welcome!</p>", src.body)
	})

	t.Run("frontmatter parsed from file", func(t *testing.T) {
		t.Parallel()
		src, err := ts.campaignTemplate(&Campaign{Key: "with_frontmatter"})
		require.NoError(t, err)
		require.Equal(t, "From file", src.meta.Subject)
		require.Equal(t, "<p>Hi</p>", src.body)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := ts.campaignTemplate(&Campaign{Key: "nope"})
		require.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

func TestRenderTemplate(t *testing.T) {
	t.Parallel()

	t.Run("no html escaping", func(t *testing.T) {
		t.Parallel()
		out, err := renderTemplate("body", "<b>{{ .name }}</b>", map[string]any{"name": "A & B"})
		require.NoError(t, err)
		require.Equal(t, "<b>A & B</b>", out)
	})

	t.Run("namespace values", func(t *testing.T) {
		t.Parallel()
		data := withNamespace(map[string]any{"name": "Jane"}, map[string]any{"subject": "Hi"})
		out, err := renderTemplate("body", "{{ .mailing.subject }} {{ .name }}", data)
		require.NoError(t, err)
		require.Equal(t, "Hi Jane", out)
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()
		_, err := renderTemplate("body", "{{ .name", nil)
		require.ErrorIs(t, err, ErrRenderFailed)
	})
}
