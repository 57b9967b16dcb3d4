// Package htmltext converts HTML mail bodies to a plain-text representation
// suitable for the text/plain alternative part of an e-mail.
//
// The conversion is deterministic and newline-preserving: whitespace between
// tags survives unchanged because text clients rely on the source's paragraph
// spacing for readability. Script and style blocks are dropped together with
// their content, links become "TEXT (URL)" (or just the URL when both are
// equal), and images are replaced by their alt text.
//
// Malformed markup never causes an error; tag syntax is stripped regardless
// of nesting correctness.
//
// Usage:
//
//	text := htmltext.Convert(`<p>Ceci est du <b>HTML</b> simple</p>`)
//	// text == "Ceci est du HTML simple"
package htmltext
