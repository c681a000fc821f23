package service

// ServiceTokenService signs and validates the bearer tokens that guard the
// internal surface (the scheduled cleanup trigger and the diagnostics used
// by test harnesses). These are machine credentials, unrelated to the
// email-delivered auth tokens.
type ServiceTokenService interface {
	// MintServiceToken issues a signed token identifying an internal caller.
	MintServiceToken(subject string) (string, error)

	// ValidateServiceToken checks a token and returns its subject.
	ValidateServiceToken(token string) (string, error)
}
