package mailing

import "context"

// Email is a fully-prepared message handed to the outbound Transport.
// Recipient lists keep the formatting that survived filtering
// ("Name <email>" entries stay intact).
type Email struct {
	From        string
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	HTML        string
	Text        string
	Headers     map[string]string // extra headers beyond the addressing set
	Attachments []ResolvedAttachment
}

// ResolvedAttachment is an attachment materialized into memory for sending.
type ResolvedAttachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Transport delivers prepared emails. Any returned error is treated as a
// delivery failure for that one mail; the dispatch engine does not
// interpret provider-specific error codes.
type Transport interface {
	Send(ctx context.Context, email *Email) error
}
