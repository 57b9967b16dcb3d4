package mailing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMirrorTokenRoundtrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})

	url := svc.mirrorURL(42)
	require.Contains(t, url, "https://example.com/mailing/mirror/")

	token := url[len("https://example.com/mailing/mirror/"):]
	id, err := svc.MirrorMailID(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestSubscriptionTokenRoundtrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})

	url := svc.unsubscribeURL("jane@example.com")
	token := url[len("https://example.com/mailing/subscriptions/"):]

	email, err := svc.SubscriptionEmail(token)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", email)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})

	// The per-purpose salts keep a mirror token from ever validating as a
	// subscription-management token and vice versa.
	mirrorToken := svc.mirrorURL(7)[len("https://example.com/mailing/mirror/"):]
	_, err := svc.SubscriptionEmail(mirrorToken)
	require.Error(t, err)

	subToken := svc.unsubscribeURL("jane@example.com")[len("https://example.com/mailing/subscriptions/"):]
	_, err = svc.MirrorMailID(subToken)
	require.Error(t, err)
}
