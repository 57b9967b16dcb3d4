package mailing

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingTransport captures outgoing mail and can be told to fail
// selected deliveries.
type recordingTransport struct {
	mu       sync.Mutex
	sent     []*Email
	failWhen func(*Email) error
}

func (t *recordingTransport) Send(ctx context.Context, email *Email) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWhen != nil {
		if err := t.failWhen(email); err != nil {
			return err
		}
	}
	t.sent = append(t.sent, email)
	return nil
}

func (t *recordingTransport) delivered() []*Email {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Email(nil), t.sent...)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		BaseURL:                "https://example.com",
		TemplatesDir:           "templates",
		AttachmentsDir:         t.TempDir(),
		UploadDir:              t.TempDir(),
		DefaultFrom:            "Notifier <noreply@example.com>",
		FailSilently:           true,
		SecretKey:              placeholderSecret,
		AllowPlaceholderSecret: true,
		MirrorSalt:             "mailing.mirror",
		SubscriptionSalt:       "mailing.subscription",
		SendConcurrency:        1,
	}
}

func newTestService(t *testing.T, st *MemoryStorage, tr Transport, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithTemplateFS(fstest.MapFS{})}, opts...)
	svc, err := New(testConfig(t), st, tr, opts...)
	require.NoError(t, err)
	return svc
}

func fixedClock(at time.Time) Option {
	return WithClock(func() time.Time { return at })
}
