package signer

import "errors"

var (
	// ErrMalformedToken indicates the token does not have the expected
	// payload.signature shape or is not valid base64.
	ErrMalformedToken = errors.New("signer: malformed token")

	// ErrBadSignature indicates the signature does not match the payload.
	ErrBadSignature = errors.New("signer: signature mismatch")
)
