package signer_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailing/pkg/signer"
)

func TestSignUnsignRoundTrip(t *testing.T) {
	t.Parallel()

	s := signer.New("test-secret", "mailing.mirror")

	values := []string{"42", "user@example.com", "", "héhé/and?query=1"}
	for _, v := range values {
		token := s.Sign(v)
		got, err := s.Unsign(token)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUnsignRejectsTampering(t *testing.T) {
	t.Parallel()

	s := signer.New("test-secret", "mailing.mirror")
	token := s.Sign("42")

	// Swap in the payload of a different value while keeping the signature.
	_, sig, ok := strings.Cut(token, ".")
	require.True(t, ok)
	forged := base64.RawURLEncoding.EncodeToString([]byte("43")) + "." + sig

	_, err := s.Unsign(forged)
	require.ErrorIs(t, err, signer.ErrBadSignature)
}

func TestUnsignRejectsOtherSalt(t *testing.T) {
	t.Parallel()

	mirror := signer.New("test-secret", "mailing.mirror")
	subs := signer.New("test-secret", "mailing.subscription")

	token := mirror.Sign("user@example.com")
	_, err := subs.Unsign(token)
	require.ErrorIs(t, err, signer.ErrBadSignature)
}

func TestUnsignRejectsMalformed(t *testing.T) {
	t.Parallel()

	s := signer.New("test-secret", "salt")

	for _, token := range []string{"", "no-dot", "a.b.c", "!!!.###"} {
		_, err := s.Unsign(token)
		require.ErrorIs(t, err, signer.ErrMalformedToken)
	}
}
