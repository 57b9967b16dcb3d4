package mailing

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailing/pkg/htmltext"
)

// SendQueuedMails runs one dispatch pass: it scans pending mails whose
// scheduled time has arrived and attempts delivery for each one
// independently. A transport failure marks that single mail failed, durably
// and immediately, and never aborts the rest of the batch. Successes are
// collected and promoted to sent in one bulk update after the scan, all
// stamped with the batch start time so the batch is queryable as a unit.
//
// Returns the number of mails sent and failed. The error is non-nil only
// for storage-level problems (the scan or the bulk update), never for
// individual delivery failures.
func (s *Service) SendQueuedMails(ctx context.Context) (sent int, failed int, err error) {
	batchStart := s.now().UTC()

	due, err := s.storage.DueMails(ctx, batchStart)
	if err != nil {
		return 0, 0, err
	}
	if len(due) == 0 {
		return 0, 0, nil
	}

	var (
		mu         sync.Mutex
		succeeded  []int64
		failCount  int
		concurrent = max(s.cfg.SendConcurrency, 1)
	)

	// Mails share no mutable state, so the pass may fan out; per-mail
	// failure isolation and the single batch timestamp hold either way.
	// An errgroup without a derived context keeps one mail's failure from
	// canceling its siblings.
	g := new(errgroup.Group)
	g.SetLimit(concurrent)

	for _, m := range due {
		g.Go(func() error {
			if sendErr := s.deliver(ctx, m); sendErr != nil {
				s.log.Error("mail delivery failed",
					slog.Int64("mail_id", m.ID),
					slog.String("error", sendErr.Error()))
				if markErr := s.storage.MarkFailed(ctx, m.ID, sendErr.Error()); markErr != nil {
					s.log.Error("failed to record delivery failure",
						slog.Int64("mail_id", m.ID),
						slog.String("error", markErr.Error()))
				}
				mu.Lock()
				failCount++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			succeeded = append(succeeded, m.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(succeeded) > 0 {
		updated, err := s.storage.MarkSent(ctx, succeeded, batchStart)
		if err != nil {
			return 0, failCount, err
		}
		sent = int(updated)
	}

	return sent, failCount, nil
}

// deliver prepares and sends one mail through the transport.
func (s *Service) deliver(ctx context.Context, m *Mail) error {
	attachments, err := s.resolveAttachments(ctx, m)
	if err != nil {
		return err
	}

	text := m.TextBody
	if text == "" {
		// Derived for this send only; the persisted mail keeps its blank
		// text_body and its html_body untouched.
		text = htmltext.Convert(m.HTMLBody)
	}

	email := &Email{
		From:        m.Header("From"),
		To:          splitAddressList(m.Header("To")),
		CC:          splitAddressList(m.Header("Cc")),
		BCC:         splitAddressList(m.Header("Bcc")),
		Subject:     m.Subject,
		HTML:        m.HTMLBody,
		Text:        text,
		Headers:     extraHeaders(m.Headers),
		Attachments: attachments,
	}

	return s.transport.Send(ctx, email)
}

// extraHeaders returns the headers that are not part of the addressing set
// already mapped onto Email fields.
func extraHeaders(headers []Header) map[string]string {
	out := make(map[string]string)
	for _, h := range headers {
		switch strings.ToLower(h.Name) {
		case "from", "to", "cc", "bcc", "subject":
			continue
		}
		out[h.Name] = h.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
