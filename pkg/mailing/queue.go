package mailing

import (
	"context"
	"errors"
	"log/slog"
)

// QueueOptions carries per-call queueing parameters.
type QueueOptions struct {
	// Headers are extra headers overlaid on the campaign's own. Ad-hoc
	// mail must include a To entry here.
	Headers []Header

	// Subject and HTMLTemplate define an ad-hoc mail when no campaign key
	// is given. Both are required in that case.
	Subject      string
	HTMLTemplate string
	TextTemplate string

	// FailLoudly overrides the configured fail-silently policy for unknown
	// campaign keys when set.
	FailLoudly *bool

	Render RenderOptions
}

// QueueMail renders a mail and transitions it to pending.
//
// With a campaign key, the campaign is resolved and drives subject,
// template, headers, and subscription gating. An unknown key follows the
// fail-silently policy: a warning and a (nil, nil) result by default, or
// ErrCampaignNotFound when the policy is loud. A disabled campaign is a
// silent no-op by design, and a campaign whose recipients are all filtered
// away is an expected (nil, nil) outcome logged at debug level.
//
// With an empty key the caller must supply Subject and HTMLTemplate in
// opts; missing either is a programming error and fails fast.
func (s *Service) QueueMail(ctx context.Context, campaignKey string, data map[string]any, opts QueueOptions) (*Mail, error) {
	var (
		mail     *Mail
		campaign *Campaign
		err      error
	)

	if campaignKey != "" {
		campaign, err = s.storage.CampaignByKey(ctx, campaignKey)
		if err != nil {
			if !errors.Is(err, ErrCampaignNotFound) {
				return nil, err
			}
			if s.failLoudly(opts) {
				return nil, err
			}
			s.log.Warn("campaign not found, no mail queued", slog.String("campaign", campaignKey))
			return nil, nil
		}
		if !campaign.IsEnabled {
			// Disabling is an intentional operator action, not a warning.
			return nil, nil
		}

		mail, err = s.RenderCampaignMail(ctx, campaign, data, opts.Headers, opts.Render)
	} else {
		if opts.Subject == "" {
			return nil, ErrMissingSubject
		}
		if opts.HTMLTemplate == "" {
			return nil, ErrMissingTemplate
		}
		render := opts.Render
		render.TextTemplate = opts.TextTemplate
		mail, err = s.RenderMail(ctx, opts.Subject, opts.HTMLTemplate, opts.Headers, data, render)
	}

	if err != nil {
		if errors.Is(err, ErrEmptyRecipients) {
			// Expected outcome of list hygiene, not an operational error.
			s.log.Debug("no eligible recipients, no mail queued",
				slog.String("campaign", campaignKey),
				slog.String("reason", err.Error()))
			return nil, nil
		}
		return nil, err
	}

	if campaign != nil && campaign.IsDebug {
		// Debug campaigns stop at draft so operators can inspect the
		// rendered mail without anything leaving the system.
		s.log.Debug("debug campaign, mail kept as draft",
			slog.String("campaign", campaignKey),
			slog.Int64("mail_id", mail.ID))
		return mail, nil
	}

	if err := mail.transition(StatusPending); err != nil {
		return nil, err
	}
	if err := s.storage.UpdateMail(ctx, mail); err != nil {
		return nil, err
	}

	return mail, nil
}

func (s *Service) failLoudly(opts QueueOptions) bool {
	if opts.FailLoudly != nil {
		return *opts.FailLoudly
	}
	return !s.cfg.FailSilently
}
