package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mailing/pkg/mailing"
)

func (s *Storage) CreateMail(ctx context.Context, m *mailing.Mail) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO mailing_mails (campaign_id, status, scheduled_at, subject, html_body, text_body, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		m.CampaignID, m.Status, m.ScheduledAt, m.Subject, m.HTMLBody, m.TextBody, m.FailureReason).
		Scan(&m.ID)
	if err != nil {
		return err
	}
	return s.writeChildren(ctx, m)
}

func (s *Storage) UpdateMail(ctx context.Context, m *mailing.Mail) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE mailing_mails
		SET campaign_id = $2, status = $3, scheduled_at = $4, sent_at = $5,
		    subject = $6, html_body = $7, text_body = $8, failure_reason = $9
		WHERE id = $1`,
		m.ID, m.CampaignID, m.Status, m.ScheduledAt, m.SentAt,
		m.Subject, m.HTMLBody, m.TextBody, m.FailureReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mailing.ErrMailNotFound
	}

	// Headers and attachments are replaced wholesale; they are small child
	// sets and this keeps ordering authoritative.
	if _, err := s.q.Exec(ctx, `DELETE FROM mailing_mail_headers WHERE mail_id = $1`, m.ID); err != nil {
		return err
	}
	if _, err := s.q.Exec(ctx, `DELETE FROM mailing_mail_attachments WHERE mail_id = $1`, m.ID); err != nil {
		return err
	}
	return s.writeChildren(ctx, m)
}

func (s *Storage) writeChildren(ctx context.Context, m *mailing.Mail) error {
	for i, h := range m.Headers {
		if _, err := s.q.Exec(ctx, `
			INSERT INTO mailing_mail_headers (mail_id, name, value, position)
			VALUES ($1, $2, $3, $4)`, m.ID, h.Name, h.Value, i); err != nil {
			return err
		}
	}
	for _, a := range m.StaticAttachments {
		if _, err := s.q.Exec(ctx, `
			INSERT INTO mailing_mail_attachments (mail_id, kind, ref, filename, mime_type)
			VALUES ($1, 'static', $2, $3, $4)`, m.ID, a.Path, a.Filename, a.MIMEType); err != nil {
			return err
		}
	}
	for _, a := range m.DynamicAttachments {
		if _, err := s.q.Exec(ctx, `
			INSERT INTO mailing_mail_attachments (mail_id, kind, ref, filename, mime_type)
			VALUES ($1, 'dynamic', $2, $3, $4)`, m.ID, a.Key, a.Filename, a.MIMEType); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) MailByID(ctx context.Context, id int64) (*mailing.Mail, error) {
	var m mailing.Mail
	err := s.q.QueryRow(ctx, `
		SELECT id, campaign_id, status, scheduled_at, sent_at, subject, html_body, text_body, failure_reason
		FROM mailing_mails
		WHERE id = $1`, id).
		Scan(&m.ID, &m.CampaignID, &m.Status, &m.ScheduledAt, &m.SentAt,
			&m.Subject, &m.HTMLBody, &m.TextBody, &m.FailureReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mailing.ErrMailNotFound
		}
		return nil, err
	}
	if err := s.loadChildren(ctx, []*mailing.Mail{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) DueMails(ctx context.Context, now time.Time) ([]*mailing.Mail, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, campaign_id, status, scheduled_at, sent_at, subject, html_body, text_body, failure_reason
		FROM mailing_mails
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at, id`, mailing.StatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mails []*mailing.Mail
	for rows.Next() {
		var m mailing.Mail
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.Status, &m.ScheduledAt, &m.SentAt,
			&m.Subject, &m.HTMLBody, &m.TextBody, &m.FailureReason); err != nil {
			return nil, err
		}
		mails = append(mails, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, mails); err != nil {
		return nil, err
	}
	return mails, nil
}

// loadChildren fetches headers and attachments for a batch of mails in two
// queries instead of two per mail.
func (s *Storage) loadChildren(ctx context.Context, mails []*mailing.Mail) error {
	if len(mails) == 0 {
		return nil
	}
	byID := make(map[int64]*mailing.Mail, len(mails))
	ids := make([]int64, 0, len(mails))
	for _, m := range mails {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	rows, err := s.q.Query(ctx, `
		SELECT mail_id, name, value
		FROM mailing_mail_headers
		WHERE mail_id = ANY($1)
		ORDER BY mail_id, position, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mailID int64
		var h mailing.Header
		if err := rows.Scan(&mailID, &h.Name, &h.Value); err != nil {
			return err
		}
		byID[mailID].Headers = append(byID[mailID].Headers, h)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	rows, err = s.q.Query(ctx, `
		SELECT mail_id, kind, ref, filename, mime_type
		FROM mailing_mail_attachments
		WHERE mail_id = ANY($1)
		ORDER BY mail_id, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mailID int64
		var kind, ref, filename, mimeType string
		if err := rows.Scan(&mailID, &kind, &ref, &filename, &mimeType); err != nil {
			return err
		}
		m := byID[mailID]
		if kind == "static" {
			m.StaticAttachments = append(m.StaticAttachments, mailing.StaticAttachment{Path: ref, Filename: filename, MIMEType: mimeType})
		} else {
			m.DynamicAttachments = append(m.DynamicAttachments, mailing.DynamicAttachment{Key: ref, Filename: filename, MIMEType: mimeType})
		}
	}
	return rows.Err()
}

func (s *Storage) MarkFailed(ctx context.Context, id int64, reason string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE mailing_mails
		SET status = $2, failure_reason = $3
		WHERE id = $1`, id, mailing.StatusFailure, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mailing.ErrMailNotFound
	}
	return nil
}

func (s *Storage) MarkSent(ctx context.Context, ids []int64, sentAt time.Time) (int64, error) {
	// The status guard makes overlapping dispatch passes safe: a row
	// already moved out of pending is left alone.
	tag, err := s.q.Exec(ctx, `
		UPDATE mailing_mails
		SET status = $2, sent_at = $3
		WHERE id = ANY($1) AND status = $4`,
		ids, mailing.StatusSent, sentAt, mailing.StatusPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) DeleteMailsBefore(ctx context.Context, cutoff time.Time, only, exclude []mailing.Status) (int64, error) {
	query := `DELETE FROM mailing_mails WHERE scheduled_at < $1`
	args := []any{cutoff}

	if len(only) > 0 {
		args = append(args, statusStrings(only))
		query += ` AND status = ANY($2)`
	}
	if len(exclude) > 0 {
		args = append(args, statusStrings(exclude))
		if len(only) > 0 {
			query += ` AND NOT status = ANY($3)`
		} else {
			query += ` AND NOT status = ANY($2)`
		}
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func statusStrings(statuses []mailing.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}
