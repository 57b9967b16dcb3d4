package mailing

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage for tests and local development.
// It mirrors the transactional contract of a real database closely enough
// for the assembly pipeline: InTransaction snapshots the mail table and
// restores it when the callback fails.
type MemoryStorage struct {
	mu sync.Mutex
	tx sync.Mutex

	nextMailID int64
	campaigns  map[string]*Campaign
	types      map[int64]*SubscriptionType
	subs       map[string]*Subscription // key: email + "\x00" + typeID
	blacklist  map[string]*BlacklistEntry
	mails      map[int64]*Mail
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		campaigns: make(map[string]*Campaign),
		types:     make(map[int64]*SubscriptionType),
		subs:      make(map[string]*Subscription),
		blacklist: make(map[string]*BlacklistEntry),
		mails:     make(map[int64]*Mail),
	}
}

func subscriptionKey(email string, typeID int64) string {
	return strings.ToLower(email) + "\x00" + strconv.FormatInt(typeID, 10)
}

// AddCampaign registers a campaign definition.
func (ms *MemoryStorage) AddCampaign(c *Campaign) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := cloneCampaign(c)
	if cp.ID == 0 {
		cp.ID = int64(len(ms.campaigns) + 1)
	}
	ms.campaigns[c.Key] = cp
}

// AddSubscriptionType registers a subscription type.
func (ms *MemoryStorage) AddSubscriptionType(t *SubscriptionType) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := *t
	ms.types[t.ID] = &cp
}

// AddSubscription registers an explicit per-address subscription override.
func (ms *MemoryStorage) AddSubscription(s *Subscription) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := *s
	ms.subs[subscriptionKey(s.Email, s.SubscriptionTypeID)] = &cp
}

// AddBlacklistEntry registers a suppressed address.
func (ms *MemoryStorage) AddBlacklistEntry(e *BlacklistEntry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	cp := *e
	ms.blacklist[strings.ToLower(e.Email)] = &cp
}

// MailCount reports the number of persisted mail rows.
func (ms *MemoryStorage) MailCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.mails)
}

// InTransaction snapshots the mail table, runs fn, and restores the
// snapshot when fn fails. Campaign, subscription, and blacklist tables are
// read-only during assembly, so only mails need rollback support.
func (ms *MemoryStorage) InTransaction(ctx context.Context, fn func(Storage) error) error {
	ms.tx.Lock()
	defer ms.tx.Unlock()

	ms.mu.Lock()
	snapshot := make(map[int64]*Mail, len(ms.mails))
	for id, m := range ms.mails {
		snapshot[id] = cloneMail(m)
	}
	snapshotID := ms.nextMailID
	ms.mu.Unlock()

	if err := fn(ms); err != nil {
		ms.mu.Lock()
		ms.mails = snapshot
		ms.nextMailID = snapshotID
		ms.mu.Unlock()
		return err
	}
	return nil
}

func (ms *MemoryStorage) CampaignByKey(ctx context.Context, key string) (*Campaign, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	c, ok := ms.campaigns[key]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return cloneCampaign(c), nil
}

func (ms *MemoryStorage) SubscriptionTypeByID(ctx context.Context, id int64) (*SubscriptionType, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	t, ok := ms.types[id]
	if !ok {
		return nil, ErrSubscriptionTypeNotFound
	}
	cp := *t
	return &cp, nil
}

func (ms *MemoryStorage) SubscriptionFor(ctx context.Context, email string, typeID int64) (*Subscription, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	s, ok := ms.subs[subscriptionKey(email, typeID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (ms *MemoryStorage) BlacklistEntryFor(ctx context.Context, email string) (*BlacklistEntry, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	e, ok := ms.blacklist[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (ms *MemoryStorage) CreateMail(ctx context.Context, m *Mail) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.nextMailID++
	m.ID = ms.nextMailID
	ms.mails[m.ID] = cloneMail(m)
	return nil
}

func (ms *MemoryStorage) UpdateMail(ctx context.Context, m *Mail) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.mails[m.ID]; !ok {
		return ErrMailNotFound
	}
	ms.mails[m.ID] = cloneMail(m)
	return nil
}

func (ms *MemoryStorage) MailByID(ctx context.Context, id int64) (*Mail, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m, ok := ms.mails[id]
	if !ok {
		return nil, ErrMailNotFound
	}
	return cloneMail(m), nil
}

func (ms *MemoryStorage) DueMails(ctx context.Context, now time.Time) ([]*Mail, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var due []*Mail
	for _, m := range ms.mails {
		if m.Status == StatusPending && !m.ScheduledAt.After(now) {
			due = append(due, cloneMail(m))
		}
	}
	slices.SortFunc(due, func(a, b *Mail) int {
		if a.ScheduledAt.Equal(b.ScheduledAt) {
			return int(a.ID - b.ID)
		}
		if a.ScheduledAt.Before(b.ScheduledAt) {
			return -1
		}
		return 1
	})
	return due, nil
}

func (ms *MemoryStorage) MarkFailed(ctx context.Context, id int64, reason string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m, ok := ms.mails[id]
	if !ok {
		return ErrMailNotFound
	}
	m.Status = StatusFailure
	m.FailureReason = reason
	return nil
}

func (ms *MemoryStorage) MarkSent(ctx context.Context, ids []int64, sentAt time.Time) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var updated int64
	for _, id := range ids {
		m, ok := ms.mails[id]
		if !ok || m.Status != StatusPending {
			continue // still-pending guard, same as the SQL conditional update
		}
		m.Status = StatusSent
		at := sentAt
		m.SentAt = &at
		updated++
	}
	return updated, nil
}

func (ms *MemoryStorage) DeleteMailsBefore(ctx context.Context, cutoff time.Time, only, exclude []Status) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var deleted int64
	for id, m := range ms.mails {
		if !m.ScheduledAt.Before(cutoff) {
			continue
		}
		if len(only) > 0 && !slices.Contains(only, m.Status) {
			continue
		}
		if slices.Contains(exclude, m.Status) {
			continue
		}
		delete(ms.mails, id)
		deleted++
	}
	return deleted, nil
}

func cloneMail(m *Mail) *Mail {
	cp := *m
	if m.SentAt != nil {
		at := *m.SentAt
		cp.SentAt = &at
	}
	if m.CampaignID != nil {
		id := *m.CampaignID
		cp.CampaignID = &id
	}
	cp.Headers = slices.Clone(m.Headers)
	cp.StaticAttachments = slices.Clone(m.StaticAttachments)
	cp.DynamicAttachments = slices.Clone(m.DynamicAttachments)
	return &cp
}

func cloneCampaign(c *Campaign) *Campaign {
	cp := *c
	if c.SubscriptionTypeID != nil {
		id := *c.SubscriptionTypeID
		cp.SubscriptionTypeID = &id
	}
	cp.ExtraHeaders = slices.Clone(c.ExtraHeaders)
	cp.StaticAttachments = slices.Clone(c.StaticAttachments)
	cp.DynamicAttachments = slices.Clone(c.DynamicAttachments)
	return &cp
}
