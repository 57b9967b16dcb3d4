package mailing

import (
	"strconv"
	"strings"
)

// mirrorURL builds the signed web-preview link for a persisted mail. The
// mail must already have its storage identifier; this is why the draft row
// is created mid-pipeline, before body rendering.
func (s *Service) mirrorURL(mailID int64) string {
	token := s.mirror.Sign(strconv.FormatInt(mailID, 10))
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/mailing/mirror/" + token
}

// unsubscribeURL builds the signed subscription-management link for a
// recipient address.
func (s *Service) unsubscribeURL(email string) string {
	token := s.subscriptions.Sign(email)
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/mailing/subscriptions/" + token
}

// MirrorMailID verifies a mirror token produced by this engine and returns
// the embedded mail identifier. The web layer serving mirror views calls
// this before loading the mail's HTML body.
func (s *Service) MirrorMailID(token string) (int64, error) {
	value, err := s.mirror.Unsign(token)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

// SubscriptionEmail verifies a subscription-management token and returns
// the embedded e-mail address for the self-service web layer.
func (s *Service) SubscriptionEmail(token string) (string, error) {
	return s.subscriptions.Unsign(token)
}
