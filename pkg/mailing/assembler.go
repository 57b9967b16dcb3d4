package mailing

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// RenderOptions carries per-mail assembly parameters.
type RenderOptions struct {
	// Campaign links the mail to its originating campaign and enables
	// subject prefixing and subscription gating. Nil for ad-hoc mail.
	Campaign *Campaign

	// ScheduledAt is when the mail becomes due. Zero means immediately.
	ScheduledAt time.Time

	// Filter controls the blacklist pass.
	Filter FilterOptions

	// Attachments is dynamic content persisted at queue time.
	Attachments []DynamicInput

	// StaticAttachments are additional file references beyond the
	// campaign's own.
	StaticAttachments []StaticAttachment

	// TextTemplate optionally renders a distinct plain-text body. When
	// empty, the text body is derived from the HTML at send time.
	TextTemplate string
}

// RenderMail assembles and persists a draft Mail from a subject template,
// an HTML body template, header templates, and a data context.
//
// The step order is deliberate: the draft row is persisted right after the
// subject render because its identifier feeds the mirror URL, which header
// and body templates may reference. Everything from the draft insert
// onwards runs in one storage transaction, so an EmptyRecipients outcome
// (or any later failure) leaves no orphan draft behind.
func (s *Service) RenderMail(ctx context.Context, subjectTpl, htmlTpl string, headers []Header, data map[string]any, opts RenderOptions) (*Mail, error) {
	if to, ok := headerValue(headers, "To"); !ok || strings.TrimSpace(to) == "" {
		return nil, ErrMissingRecipient
	}

	subject, err := renderTemplate("subject", subjectTpl, data)
	if err != nil {
		return nil, err
	}
	if opts.Campaign != nil && opts.Campaign.PrefixSubject && s.cfg.SubjectPrefix != "" {
		subject = s.cfg.SubjectPrefix + " " + subject
	}

	scheduledAt := opts.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = s.now()
	}

	mail := &Mail{
		Status:      StatusDraft,
		ScheduledAt: scheduledAt,
		Subject:     subject,
	}
	if opts.Campaign != nil {
		id := opts.Campaign.ID
		mail.CampaignID = &id
	}

	err = s.storage.InTransaction(ctx, func(st Storage) error {
		if err := st.CreateMail(ctx, mail); err != nil {
			return err
		}

		ns := map[string]any{
			"subject":    subject,
			"mirror_url": s.mirrorURL(mail.ID),
		}
		if opts.Campaign != nil {
			ns["campaign"] = opts.Campaign.Name
		}
		renderCtx := withNamespace(data, ns)

		resolved, err := s.renderHeaders(headers, renderCtx)
		if err != nil {
			return err
		}
		mail.Headers = resolved
		if _, ok := headerValue(mail.Headers, "From"); !ok {
			mail.setHeader("From", s.cfg.DefaultFrom)
		}

		slots := &recipientSlots{
			To:  splitAddressList(mail.Header("To")),
			Cc:  splitAddressList(mail.Header("Cc")),
			Bcc: splitAddressList(mail.Header("Bcc")),
		}
		if err := filterRecipients(ctx, st, slots, opts.Filter); err != nil {
			return err
		}

		if opts.Campaign != nil && opts.Campaign.SubscriptionTypeID != nil {
			subType, err := st.SubscriptionTypeByID(ctx, *opts.Campaign.SubscriptionTypeID)
			if err != nil {
				return err
			}
			if slots.To, err = filterUnsubscribed(ctx, st, slots.To, subType); err != nil {
				return err
			}
			if len(slots.To) == 0 {
				return fmt.Errorf("%w: all primary recipients unsubscribed", ErrEmptyRecipients)
			}
			ns["unsubscribe_url"] = s.unsubscribeURL(normalizeAddress(slots.To[0]))
		}

		s.applySlots(mail, slots)
		ns["headers"] = headerMap(mail.Headers)

		bodyCtx := withNamespace(data, ns)
		if mail.HTMLBody, err = renderTemplate("html_body", htmlTpl, bodyCtx); err != nil {
			return err
		}
		if opts.TextTemplate != "" {
			if mail.TextBody, err = renderTemplate("text_body", opts.TextTemplate, bodyCtx); err != nil {
				return err
			}
		}

		mail.StaticAttachments = opts.StaticAttachments
		if opts.Campaign != nil {
			mail.StaticAttachments = append(slices.Clone(opts.Campaign.StaticAttachments), opts.StaticAttachments...)
			mail.DynamicAttachments = slices.Clone(opts.Campaign.DynamicAttachments)
		}
		for _, in := range opts.Attachments {
			stored, err := s.storeDynamic(ctx, in)
			if err != nil {
				return err
			}
			mail.DynamicAttachments = append(mail.DynamicAttachments, stored)
		}

		return st.UpdateMail(ctx, mail)
	})
	if err != nil {
		return nil, err
	}

	return mail, nil
}

// RenderCampaignMail resolves subject, template, headers, and attachments
// from a campaign definition and delegates to RenderMail.
func (s *Service) RenderCampaignMail(ctx context.Context, campaign *Campaign, data map[string]any, extraHeaders []Header, opts RenderOptions) (*Mail, error) {
	src, err := s.templates.campaignTemplate(campaign)
	if err != nil {
		return nil, err
	}

	subject := campaign.Subject
	if subject == "" {
		subject = src.meta.Subject
	}

	headers := headersFromMeta(src.meta.Headers)
	headers = mergeHeaders(headers, campaign.ExtraHeaders)
	headers = mergeHeaders(headers, extraHeaders)

	opts.Campaign = campaign
	return s.RenderMail(ctx, subject, src.body, headers, data, opts)
}

// renderHeaders renders every header value against the enriched context and
// enforces the RFC 5322 value-length bound.
func (s *Service) renderHeaders(headers []Header, renderCtx map[string]any) ([]Header, error) {
	resolved := make([]Header, 0, len(headers))
	for _, h := range headers {
		value, err := renderTemplate("header:"+h.Name, h.Value, renderCtx)
		if err != nil {
			return nil, err
		}
		if len(value) > maxHeaderValueLen {
			return nil, fmt.Errorf("%w: %s", ErrHeaderTooLong, h.Name)
		}
		resolved = append(resolved, Header{Name: h.Name, Value: value})
	}
	return resolved, nil
}

// applySlots writes filtered recipient lists back onto the mail's headers.
// Empty Cc/Bcc slots drop their headers; the To slot is guaranteed
// non-empty by the filtering passes.
func (s *Service) applySlots(mail *Mail, slots *recipientSlots) {
	mail.setHeader("To", strings.Join(slots.To, ", "))
	for name, slot := range map[string][]string{"Cc": slots.Cc, "Bcc": slots.Bcc} {
		if len(slot) == 0 {
			mail.removeHeader(name)
		} else {
			mail.setHeader(name, strings.Join(slot, ", "))
		}
	}
}

// headerMap exposes resolved headers to body templates.
func headerMap(headers []Header) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Name] = h.Value
	}
	return out
}

// headersFromMeta converts frontmatter headers to an ordered slice.
func headersFromMeta(meta map[string]string) []Header {
	if len(meta) == 0 {
		return nil
	}
	names := make([]string, 0, len(meta))
	for name := range meta {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(names))
	for _, name := range names {
		headers = append(headers, Header{Name: name, Value: meta[name]})
	}
	return headers
}

// mergeHeaders overlays overrides onto base, replacing by name
// (case-insensitively) and appending new names in order.
func mergeHeaders(base, overrides []Header) []Header {
	out := slices.Clone(base)
	for _, h := range overrides {
		replaced := false
		for i, existing := range out {
			if strings.EqualFold(existing.Name, h.Name) {
				out[i] = h
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, h)
		}
	}
	return out
}
