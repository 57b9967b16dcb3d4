// Package signer produces and verifies tamper-evident string tokens.
//
// A token is the URL-safe base64 encoding of the value followed by a
// truncated HMAC-SHA256 signature, separated by a dot. Distinct salts yield
// distinct signature domains, so a token signed for one purpose (for example
// a mirror-view mail identifier) can never be replayed for another (a
// subscription-management e-mail address).
//
// Usage:
//
//	s := signer.New(secretKey, "mailing.mirror")
//	token := s.Sign("42")
//	id, err := s.Unsign(token) // "42", nil
package signer
