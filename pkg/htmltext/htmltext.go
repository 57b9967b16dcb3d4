package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// link accumulates the inner text of an open <a> element so the closing tag
// can decide between "TEXT (URL)", plain URL, and plain text output.
type link struct {
	href    string
	hasHref bool
	buf     strings.Builder
}

// Convert strips HTML markup from src and returns the remaining text.
//
// Rules:
//   - <script> and <style> blocks are removed entirely, content included.
//   - <a href="URL">TEXT</a> becomes "TEXT (URL)"; when TEXT equals URL the
//     URL is emitted alone. Anchors without an href keep their text as is.
//   - <img alt="ALT"> becomes ALT; images without alt text are dropped.
//   - Every other tag is stripped while text and whitespace between tags are
//     preserved byte for byte.
//
// Input that is already plain text passes through unchanged.
func Convert(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))

	var out strings.Builder
	out.Grow(len(src))
	var links []*link

	write := func(s string) {
		if n := len(links); n > 0 {
			links[n-1].buf.WriteString(s)
		} else {
			out.WriteString(s)
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// Unterminated anchors keep their collected text; this is the
			// graceful-degradation path for malformed markup.
			for _, l := range links {
				out.WriteString(l.buf.String())
			}
			return out.String()

		case html.TextToken:
			write(string(z.Text()))

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skipRawContent(z, string(name))
				}
			case "a":
				if tt == html.StartTagToken {
					l := &link{}
					l.href, l.hasHref = tagAttr(z, hasAttr, "href")
					links = append(links, l)
				}
			case "img":
				if alt, ok := tagAttr(z, hasAttr, "alt"); ok {
					write(alt)
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "a" {
				continue
			}
			n := len(links)
			if n == 0 {
				continue // stray </a>
			}
			l := links[n-1]
			links = links[:n-1]
			text := l.buf.String()
			switch {
			case !l.hasHref || l.href == "":
				write(text)
			case text == l.href:
				write(l.href)
			default:
				write(text + " (" + l.href + ")")
			}
		}
	}
}

// tagAttr scans the current tag's attributes for name and returns its value.
// Must be called directly after TagName, before the tokenizer advances.
func tagAttr(z *html.Tokenizer, hasAttr bool, name string) (string, bool) {
	if !hasAttr {
		return "", false
	}
	var value string
	var found bool
	for {
		key, val, more := z.TagAttr()
		if string(key) == name && !found {
			value = string(val)
			found = true
		}
		if !more {
			break
		}
	}
	return value, found
}

// skipRawContent consumes tokens until the matching end tag, discarding the
// raw text content of script/style elements.
func skipRawContent(z *html.Tokenizer, tag string) {
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				return
			}
		}
	}
}
