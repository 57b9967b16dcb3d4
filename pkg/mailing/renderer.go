package mailing

import (
	"fmt"
	"maps"
	"strings"
	texttemplate "text/template"
)

// mailingNamespace is the context key under which mail-specific values are
// exposed to templates: {{ .mailing.subject }}, {{ .mailing.mirror_url }},
// {{ .mailing.campaign }}, {{ .mailing.unsubscribe_url }}, and
// {{ .mailing.headers }}.
//
// Enrichment happens in two phases. Subject and headers are rendered with a
// partial namespace first; the final namespace, including recipient-derived
// values, is injected before the body render so body templates can reference
// the resolved subject and per-recipient URLs.
const mailingNamespace = "mailing"

// renderTemplate renders a template string against the context using
// text/template. text/template performs no HTML escaping, which is required
// here: mail bodies are intentionally HTML, and template sources are trusted
// operator content, not user input.
func renderTemplate(name, source string, data map[string]any) (string, error) {
	tmpl, err := texttemplate.New(name).Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// withNamespace returns a shallow copy of data with the mailing namespace
// set, leaving the caller's map untouched.
func withNamespace(data map[string]any, ns map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	maps.Copy(out, data)
	out[mailingNamespace] = ns
	return out
}
