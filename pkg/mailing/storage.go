package mailing

import (
	"context"
	"time"
)

// Storage is the persistence collaborator for campaigns, mails,
// subscriptions, and the blacklist. Implementations must return
// ErrCampaignNotFound and ErrMailNotFound for missing rows, and nil (not an
// error) for absent subscription and blacklist lookups.
type Storage interface {
	// InTransaction runs fn against a transactional view of the storage.
	// When fn returns an error every write made through the passed Storage
	// is rolled back. Mail assembly depends on this to remove the draft row
	// when recipient filtering empties the To slot.
	InTransaction(ctx context.Context, fn func(Storage) error) error

	CampaignByKey(ctx context.Context, key string) (*Campaign, error)
	SubscriptionTypeByID(ctx context.Context, id int64) (*SubscriptionType, error)

	// SubscriptionFor returns the explicit subscription row for the address
	// and type, or nil when none exists.
	SubscriptionFor(ctx context.Context, email string, typeID int64) (*Subscription, error)

	// BlacklistEntryFor returns the blacklist entry for the normalized
	// address, or nil when the address is not blacklisted.
	BlacklistEntryFor(ctx context.Context, email string) (*BlacklistEntry, error)

	// CreateMail persists a new mail row and assigns its ID.
	CreateMail(ctx context.Context, m *Mail) error

	// UpdateMail persists the mail's current fields, headers, and
	// attachments.
	UpdateMail(ctx context.Context, m *Mail) error

	MailByID(ctx context.Context, id int64) (*Mail, error)

	// DueMails returns mails with status pending and a scheduled time at or
	// before now, oldest first.
	DueMails(ctx context.Context, now time.Time) ([]*Mail, error)

	// MarkFailed durably records a delivery failure for a single mail.
	// Called per-mail during the dispatch pass so failures survive an
	// interrupted batch.
	MarkFailed(ctx context.Context, id int64, reason string) error

	// MarkSent transitions the given mails to sent with the shared batch
	// timestamp. Only rows still in pending status are updated; the number
	// of rows actually updated is returned.
	MarkSent(ctx context.Context, ids []int64, sentAt time.Time) (int64, error)

	// DeleteMailsBefore removes mails scheduled before the cutoff,
	// optionally restricted to or excluding specific statuses. Returns the
	// number of rows removed.
	DeleteMailsBefore(ctx context.Context, cutoff time.Time, only, exclude []Status) (int64, error)
}
