package mailing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueMail_AdHoc(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	svc := newTestService(t, st, &recordingTransport{})

	mail, err := svc.QueueMail(ctx, "", map[string]any{"name": "Jane"}, QueueOptions{
		Subject:      "Hello {{ .name }}",
		HTMLTemplate: "<p>Hi {{ .name }}</p>",
		Headers:      []Header{{Name: "To", Value: "jane@example.com"}},
	})
	require.NoError(t, err)
	require.NotNil(t, mail)
	require.Equal(t, StatusPending, mail.Status)
	require.Equal(t, "Hello Jane", mail.Subject)

	stored, err := st.MailByID(ctx, mail.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
}

func TestQueueMail_AdHocValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})

	_, err := svc.QueueMail(ctx, "", nil, QueueOptions{
		HTMLTemplate: "<p>B</p>",
		Headers:      []Header{{Name: "To", Value: "to@example.com"}},
	})
	require.ErrorIs(t, err, ErrMissingSubject)

	_, err = svc.QueueMail(ctx, "", nil, QueueOptions{
		Subject: "S",
		Headers: []Header{{Name: "To", Value: "to@example.com"}},
	})
	require.ErrorIs(t, err, ErrMissingTemplate)
}

func TestQueueMail_UnknownCampaign(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	svc := newTestService(t, st, &recordingTransport{})

	t.Run("silent by default", func(t *testing.T) {
		t.Parallel()
		mail, err := svc.QueueMail(ctx, "missing", nil, QueueOptions{})
		require.NoError(t, err)
		require.Nil(t, mail)
	})

	t.Run("loud on request", func(t *testing.T) {
		t.Parallel()
		loud := true
		_, err := svc.QueueMail(ctx, "missing", nil, QueueOptions{FailLoudly: &loud})
		require.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestQueueMail_LoudConfigSilentOverride(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.FailSilently = false
	svc, err := New(cfg, NewMemoryStorage(), &recordingTransport{})
	require.NoError(t, err)

	_, err = svc.QueueMail(ctx, "missing", nil, QueueOptions{})
	require.ErrorIs(t, err, ErrCampaignNotFound)

	quiet := false
	mail, err := svc.QueueMail(ctx, "missing", nil, QueueOptions{FailLoudly: &quiet})
	require.NoError(t, err)
	require.Nil(t, mail)
}

func TestQueueMail_DisabledCampaign(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	st.AddCampaign(&Campaign{
		Key:            "paused",
		Subject:        "S",
		TemplateSource: "<p>B</p>",
		IsEnabled:      false,
	})
	svc := newTestService(t, st, &recordingTransport{})

	mail, err := svc.QueueMail(ctx, "paused", nil, QueueOptions{
		Headers: []Header{{Name: "To", Value: "to@example.com"}},
	})
	require.NoError(t, err)
	require.Nil(t, mail)
	require.Zero(t, st.MailCount())
}

func TestQueueMail_EmptyRecipientsIsSilent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	st.AddBlacklistEntry(&BlacklistEntry{Email: "gone@example.com", Reason: ReasonHardBounce})
	st.AddCampaign(&Campaign{
		Key:            "news",
		Subject:        "S",
		TemplateSource: "<p>B</p>",
		IsEnabled:      true,
	})
	svc := newTestService(t, st, &recordingTransport{})

	mail, err := svc.QueueMail(ctx, "news", nil, QueueOptions{
		Headers: []Header{{Name: "To", Value: "gone@example.com"}},
	})
	require.NoError(t, err)
	require.Nil(t, mail)
	require.Zero(t, st.MailCount())
}

func TestQueueMail_CampaignSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	st.AddCampaign(&Campaign{
		ID:             42,
		Key:            "welcome",
		Name:           "Welcome",
		Subject:        "Welcome, {{ .name }}",
		TemplateSource: "<p>Glad to have you, {{ .name }}.</p>",
		IsEnabled:      true,
		ExtraHeaders:   []Header{{Name: "X-Campaign", Value: "{{ .mailing.campaign }}"}},
	})
	svc := newTestService(t, st, &recordingTransport{})

	mail, err := svc.QueueMail(ctx, "welcome", map[string]any{"name": "Jane"}, QueueOptions{
		Headers: []Header{{Name: "To", Value: "jane@example.com"}},
	})
	require.NoError(t, err)
	require.NotNil(t, mail)
	require.Equal(t, StatusPending, mail.Status)
	require.Equal(t, "Welcome, Jane", mail.Subject)
	require.Equal(t, "<p>Glad to have you, Jane.</p>", mail.HTMLBody)
	require.Equal(t, "Welcome", mail.Header("X-Campaign"))
	require.NotNil(t, mail.CampaignID)
	require.Equal(t, int64(42), *mail.CampaignID)
}

func TestQueueMail_DebugCampaignStaysDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	st.AddCampaign(&Campaign{
		Key:            "debug",
		Subject:        "S",
		TemplateSource: "<p>B</p>",
		IsEnabled:      true,
		IsDebug:        true,
	})
	svc := newTestService(t, st, &recordingTransport{})

	mail, err := svc.QueueMail(ctx, "debug", nil, QueueOptions{
		Headers: []Header{{Name: "To", Value: "to@example.com"}},
	})
	require.NoError(t, err)
	require.NotNil(t, mail)
	require.Equal(t, StatusDraft, mail.Status)

	// Drafts are invisible to dispatch, so nothing leaves the system.
	sent, failed, err := svc.SendQueuedMails(ctx)
	require.NoError(t, err)
	require.Zero(t, sent)
	require.Zero(t, failed)
}
