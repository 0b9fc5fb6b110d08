package common

const (
	// DefaultCookieName is the session cookie carrying the signed token.
	DefaultCookieName = "docvault"

	// ResetCodeDigits is the width of password reset codes.
	ResetCodeDigits = 6
)
