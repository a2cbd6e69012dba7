package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrTOTPRequired is returned when the account has two-factor authentication enabled and no code was sent.
	ErrTOTPRequired = errors.New("two-factor code required")

	// ErrInvalidTOTPCode is returned for a wrong or expired two-factor code.
	ErrInvalidTOTPCode = errors.New("invalid two-factor code")

	// ErrTOTPNotEnrolled is returned when enabling two-factor authentication before enrolment.
	ErrTOTPNotEnrolled = errors.New("two-factor authentication is not enrolled")

	// ErrTOTPAlreadyEnabled is returned when enrolling an account that already uses two-factor authentication.
	ErrTOTPAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// ErrIssuerEmpty is returned when no TOTP issuer is configured.
	ErrIssuerEmpty = errors.New("totp issuer is empty")
)
