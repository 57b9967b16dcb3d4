package mailing

import "errors"

var (
	// ErrMissingRecipient indicates a mail was assembled without a To
	// header. Nothing is persisted when this is returned.
	ErrMissingRecipient = errors.New("mailing: mail requires a To header")

	// ErrEmptyRecipients indicates every primary recipient was removed by
	// blacklist or subscription filtering. The queue layer treats this as
	// the expected "no mail queued" outcome, not an operational error.
	ErrEmptyRecipients = errors.New("mailing: no eligible primary recipients")

	// ErrCampaignNotFound indicates the campaign key does not exist.
	// Surfaced to callers only when the fail-silently policy is disabled.
	ErrCampaignNotFound = errors.New("mailing: campaign not found")

	// ErrMissingSubject indicates an ad-hoc mail was queued without a
	// subject template. This is a programming error and always fails fast.
	ErrMissingSubject = errors.New("mailing: ad-hoc mail requires a subject template")

	// ErrMissingTemplate indicates an ad-hoc mail was queued without an
	// HTML body template. This is a programming error and always fails fast.
	ErrMissingTemplate = errors.New("mailing: ad-hoc mail requires an html template")

	// ErrTemplateNotFound indicates a campaign's template source could not
	// be read. A missing template is a configuration problem, so it is
	// propagated rather than silenced.
	ErrTemplateNotFound = errors.New("mailing: template not found")

	// ErrRenderFailed indicates subject, header, or body rendering failed.
	ErrRenderFailed = errors.New("mailing: failed to render template")

	// ErrHeaderTooLong indicates a resolved header value exceeds the
	// RFC 5322 line-length bound of 998 characters.
	ErrHeaderTooLong = errors.New("mailing: header value exceeds 998 characters")

	// ErrInvalidAttachment indicates a dynamic attachment was supplied
	// without content.
	ErrInvalidAttachment = errors.New("mailing: invalid attachment input")

	// ErrInvalidTransition indicates a mail status change that the
	// lifecycle state machine does not allow.
	ErrInvalidTransition = errors.New("mailing: invalid status transition")

	// ErrInvalidConfig indicates required configuration is missing.
	ErrInvalidConfig = errors.New("mailing: invalid configuration")

	// ErrMailNotFound indicates a mail row lookup by id found nothing.
	ErrMailNotFound = errors.New("mailing: mail not found")

	// ErrSubscriptionTypeNotFound indicates a campaign references a
	// subscription type that no longer exists.
	ErrSubscriptionTypeNotFound = errors.New("mailing: subscription type not found")
)
