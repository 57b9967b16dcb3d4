package mailing

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"
)

// templateMeta is the optional YAML frontmatter of a template file.
// It supplies a default subject and extra headers for ad-hoc use of the
// template; campaign definitions override both.
type templateMeta struct {
	Subject string            `yaml:"subject"`
	Headers map[string]string `yaml:"headers"`
}

// templateSource is a loaded template body with its parsed frontmatter.
type templateSource struct {
	meta templateMeta
	body string
}

// templateSet loads and caches campaign template files from a filesystem
// root. Inline template sources bypass the set entirely.
type templateSet struct {
	fs    fs.FS
	mu    sync.RWMutex
	cache map[string]*templateSource
}

func newTemplateSet(fsys fs.FS) *templateSet {
	return &templateSet{
		fs:    fsys,
		cache: make(map[string]*templateSource),
	}
}

// load reads and caches the template file at path.
func (ts *templateSet) load(path string) (*templateSource, error) {
	ts.mu.RLock()
	if src, ok := ts.cache[path]; ok {
		ts.mu.RUnlock()
		return src, nil
	}
	ts.mu.RUnlock()

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if src, ok := ts.cache[path]; ok {
		return src, nil
	}

	content, err := fs.ReadFile(ts.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, path, err)
	}

	src, err := parseTemplateSource(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, path, err)
	}

	ts.cache[path] = src
	return src, nil
}

// parseTemplateSource splits optional "---"-delimited YAML frontmatter from
// the template body.
func parseTemplateSource(content []byte) (*templateSource, error) {
	delimiter := []byte("---")

	if !bytes.HasPrefix(content, delimiter) {
		return &templateSource{body: string(content)}, nil
	}

	rest := bytes.TrimPrefix(content, delimiter)
	rest = bytes.TrimLeft(rest, "\r\n")

	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, errors.New("frontmatter closing delimiter not found")
	}

	var meta templateMeta
	if front := bytes.TrimSpace(rest[:end]); len(front) > 0 {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return nil, err
		}
	}

	body := rest[end+len(delimiter):]
	if len(body) > 0 && body[0] == '\r' {
		body = body[1:]
	}
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}

	return &templateSource{meta: meta, body: string(body)}, nil
}

// campaignTemplate resolves the HTML template for a campaign: inline source
// first, then the configured file, then the "<key>.html" convention.
func (ts *templateSet) campaignTemplate(c *Campaign) (*templateSource, error) {
	if c.TemplateSource != "" {
		return &templateSource{body: c.TemplateSource}, nil
	}
	path := c.TemplateFile
	if path == "" {
		path = c.Key + ".html"
	}
	return ts.load(path)
}
