package auth

import (
	"github.com/pquerna/otp/totp"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
)

// TOTPEnrollment is returned when a user starts two-factor enrolment.
type TOTPEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"` // otpauth:// url for authenticator apps
}

// ValidateTOTP checks a code against a base32 secret for the current time step.
func ValidateTOTP(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}

	return totp.Validate(code, secret)
}

// EnrollTOTP generates a new secret for the user and stores it disabled. The user enables two-factor
// authentication with EnableTOTP once an authenticator app produced a valid code.
func (p *LocalProvider) EnrollTOTP(userID uint64, issuer string) (*TOTPEnrollment, error) {
	if issuer == "" {
		return nil, ErrIssuerEmpty
	}

	u, err := user.Get(p.db, userID)
	if err != nil {
		return nil, err
	}

	if u.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: u.Email,
	})
	if err != nil {
		return nil, err
	}

	if err = user.SetTOTP(p.db, userID, key.Secret(), false); err != nil {
		return nil, err
	}

	return &TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// EnableTOTP turns on two-factor authentication when code matches the enrolled secret.
func (p *LocalProvider) EnableTOTP(userID uint64, code string) error {
	u, err := user.Get(p.db, userID)
	if err != nil {
		return err
	}

	if u.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if !ValidateTOTP(code, u.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return user.SetTOTP(p.db, userID, u.TOTPSecret, true)
}

// DisableTOTP turns off two-factor authentication and forgets the secret. code must match
// the enrolled secret.
func (p *LocalProvider) DisableTOTP(userID uint64, code string) error {
	u, err := user.Get(p.db, userID)
	if err != nil {
		return err
	}

	if u.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if !ValidateTOTP(code, u.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return user.SetTOTP(p.db, userID, "", false)
}
