package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mailing/pkg/db"
	"github.com/dmitrymomot/mailing/pkg/mailing"
)

// Migrations holds the embedded schema migrations for db.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// query methods serve pooled and transactional storage views.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage implements mailing.Storage on PostgreSQL.
type Storage struct {
	q    querier
	pool *pgxpool.Pool // nil inside a transaction
}

// New creates a Storage bound to the connection pool.
func New(pool *pgxpool.Pool) *Storage {
	return &Storage{q: pool, pool: pool}
}

// InTransaction runs fn against a transactional storage view. Nested calls
// join the enclosing transaction.
func (s *Storage) InTransaction(ctx context.Context, fn func(mailing.Storage) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Storage{q: tx})
	})
}

func (s *Storage) CampaignByKey(ctx context.Context, key string) (*mailing.Campaign, error) {
	var c mailing.Campaign
	err := s.q.QueryRow(ctx, `
		SELECT id, key, name, subject, prefix_subject, is_enabled, is_debug,
		       subscription_type_id, template_file, template_source
		FROM mailing_campaigns
		WHERE key = $1`, key).
		Scan(&c.ID, &c.Key, &c.Name, &c.Subject, &c.PrefixSubject, &c.IsEnabled,
			&c.IsDebug, &c.SubscriptionTypeID, &c.TemplateFile, &c.TemplateSource)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mailing.ErrCampaignNotFound
		}
		return nil, err
	}

	if c.ExtraHeaders, err = s.campaignHeaders(ctx, c.ID); err != nil {
		return nil, err
	}
	if c.StaticAttachments, c.DynamicAttachments, err = s.campaignAttachments(ctx, c.ID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) campaignHeaders(ctx context.Context, campaignID int64) ([]mailing.Header, error) {
	rows, err := s.q.Query(ctx, `
		SELECT name, value
		FROM mailing_campaign_headers
		WHERE campaign_id = $1
		ORDER BY position, id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var headers []mailing.Header
	for rows.Next() {
		var h mailing.Header
		if err := rows.Scan(&h.Name, &h.Value); err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (s *Storage) campaignAttachments(ctx context.Context, campaignID int64) ([]mailing.StaticAttachment, []mailing.DynamicAttachment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT kind, ref, filename, mime_type
		FROM mailing_campaign_attachments
		WHERE campaign_id = $1
		ORDER BY id`, campaignID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var static []mailing.StaticAttachment
	var dynamic []mailing.DynamicAttachment
	for rows.Next() {
		var kind, ref, filename, mimeType string
		if err := rows.Scan(&kind, &ref, &filename, &mimeType); err != nil {
			return nil, nil, err
		}
		if kind == "static" {
			static = append(static, mailing.StaticAttachment{Path: ref, Filename: filename, MIMEType: mimeType})
		} else {
			dynamic = append(dynamic, mailing.DynamicAttachment{Key: ref, Filename: filename, MIMEType: mimeType})
		}
	}
	return static, dynamic, rows.Err()
}

func (s *Storage) SubscriptionTypeByID(ctx context.Context, id int64) (*mailing.SubscriptionType, error) {
	var t mailing.SubscriptionType
	err := s.q.QueryRow(ctx, `
		SELECT id, name, description, subscribed_by_default
		FROM mailing_subscription_types
		WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.SubscribedByDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mailing.ErrSubscriptionTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Storage) SubscriptionFor(ctx context.Context, email string, typeID int64) (*mailing.Subscription, error) {
	var sub mailing.Subscription
	err := s.q.QueryRow(ctx, `
		SELECT email, subscription_type_id, subscribed
		FROM mailing_subscriptions
		WHERE email = lower($1) AND subscription_type_id = $2`, email, typeID).
		Scan(&sub.Email, &sub.SubscriptionTypeID, &sub.Subscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Storage) BlacklistEntryFor(ctx context.Context, email string) (*mailing.BlacklistEntry, error) {
	var e mailing.BlacklistEntry
	err := s.q.QueryRow(ctx, `
		SELECT email, reason, details, reported_at
		FROM mailing_blacklist
		WHERE email = lower($1)`, email).
		Scan(&e.Email, &e.Reason, &e.Details, &e.ReportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
