package mailing

import (
	"io"
	"strings"
	"time"
)

// maxHeaderValueLen bounds resolved header values per the RFC 5322
// line-length convention.
const maxHeaderValueLen = 998

// BlacklistReason categorizes why an address is suppressed.
type BlacklistReason string

const (
	ReasonSpamReport BlacklistReason = "spam_report"
	ReasonHardBounce BlacklistReason = "hard_bounce"
	ReasonBlocked    BlacklistReason = "blocked"
	ReasonOther      BlacklistReason = "other"
)

// BlacklistEntry suppresses delivery to an address regardless of its
// subscription state. Entries are created by bounce and complaint handling
// outside this engine.
type BlacklistEntry struct {
	Email      string
	Reason     BlacklistReason
	Details    string
	ReportedAt time.Time
}

// SubscriptionType is a category of mail with per-recipient opt-out
// semantics. When no Subscription row exists for an address, the type's
// SubscribedByDefault flag decides.
type SubscriptionType struct {
	ID                  int64
	Name                string
	Description         string
	SubscribedByDefault bool
}

// Subscription is an explicit per-address override for one subscription
// type. An explicit row always wins over the type's default.
type Subscription struct {
	Email              string
	SubscriptionTypeID int64
	Subscribed         bool
}

// Header is a single mail header. On the campaign side values may contain
// template variables; on the mail side they are fully resolved.
type Header struct {
	Name  string
	Value string
}

// StaticAttachment references a pre-existing file below the configured
// attachments root. File bytes are read lazily at send time to keep mail
// rows lightweight.
type StaticAttachment struct {
	Path     string // relative to Config.AttachmentsDir
	Filename string // display name; basename of Path when empty
	MIMEType string // guessed from filename when empty
}

// DynamicAttachment references caller-supplied bytes persisted to the blob
// store at queue time, since the source bytes may not survive until the
// dispatch pass.
type DynamicAttachment struct {
	Key      string // blob store key
	Filename string
	MIMEType string
}

// DynamicInput carries caller-supplied attachment content into QueueMail.
type DynamicInput struct {
	Content  io.Reader
	Filename string // a collision-free name is generated when empty
	MIMEType string // guessed when empty
}

// Campaign is a reusable template-plus-policy definition for producing
// mails. The key is the immutable identity callers use; disabling a
// campaign suppresses future queueing without touching sent history.
type Campaign struct {
	ID                 int64
	Key                string
	Name               string
	Subject            string // template string
	PrefixSubject      bool
	IsEnabled          bool
	IsDebug            bool // debug campaigns stop at draft, nothing is sent
	SubscriptionTypeID *int64
	TemplateFile       string // path below Config.TemplatesDir; "<key>.html" when empty
	TemplateSource     string // inline template; takes precedence over TemplateFile
	ExtraHeaders       []Header
	StaticAttachments  []StaticAttachment
	DynamicAttachments []DynamicAttachment
}

// Mail is one concrete, fully rendered e-mail instance. It is immutable
// after a successful send.
type Mail struct {
	ID            int64
	CampaignID    *int64 // nil for ad-hoc mail; set null when the campaign is deleted
	Status        Status
	ScheduledAt   time.Time
	SentAt        *time.Time
	Subject       string
	HTMLBody      string
	TextBody      string // derived from HTMLBody at send time when blank
	FailureReason string

	Headers            []Header
	StaticAttachments  []StaticAttachment
	DynamicAttachments []DynamicAttachment
}

// Header returns the value of the named header, case-insensitively.
func (m *Mail) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// setHeader replaces or appends a header, matching names case-insensitively.
func (m *Mail) setHeader(name, value string) {
	for i, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			m.Headers[i].Value = value
			return
		}
	}
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}

// removeHeader drops the named header if present.
func (m *Mail) removeHeader(name string) {
	out := m.Headers[:0]
	for _, h := range m.Headers {
		if !strings.EqualFold(h.Name, name) {
			out = append(out, h)
		}
	}
	m.Headers = out
}

// headerValue looks a header up in a plain slice, case-insensitively.
func headerValue(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
