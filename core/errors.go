package core

import "errors"

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExpired  = errors.New("challenge has expired")
	ErrChallengeMismatch = errors.New("challenge mismatch")
	ErrMalformedIdentity = errors.New("malformed identity")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrAddressMismatch   = errors.New("recovered address does not match identity")
	ErrTokenExpired      = errors.New("token has expired")
	ErrInvalidToken      = errors.New("invalid token")
	ErrWrongTokenType    = errors.New("wrong token type")
	ErrSubjectMismatch   = errors.New("session subject does not match requested subject")
	ErrEmptyPresentation = errors.New("presentation must embed at least one credential")
	ErrUnknownEncoding   = errors.New("unknown credential encoding")
	ErrMissingIssuerKey  = errors.New("issuer signing key is not configured")
	ErrNilClaims         = errors.New("claims cannot be nil")
)

// IsAuthenticationFailure reports whether err belongs to the class of
// challenge/signature failures that the transport must surface generically,
// without revealing which check failed.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrChallengeExpired) ||
		errors.Is(err, ErrChallengeMismatch) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrAddressMismatch)
}
