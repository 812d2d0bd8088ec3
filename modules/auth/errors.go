package auth

import "errors"

var (
	ErrUserAlreadyExists         = errors.New("user with provided email address already exists")
	ErrEmailOrPhoneTaken         = errors.New("user already exists with this email or phone number")
	ErrUserEmailTaken            = errors.New("user already exists with this email")
	ErrOrganisationAlreadyExists = errors.New("organisation with provided details already exists")
	ErrOrganisationEmailTaken    = errors.New("organisation already exists with this email")

	ErrAuthenticationFailed = errors.New("user or password do not match")
	ErrRecordNotFound       = errors.New("record not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganisationNotFound = errors.New("organisation not found")

	ErrInvalidToken        = errors.New("invalid token provided")
	ErrInvalidOTP          = errors.New("invalid otp provided")
	ErrInvalidAuthHeader   = errors.New("invalid or missing authorization header")
	ErrInvalidProvider     = errors.New("unsupported oauth provider")
	ErrMissingCodeVerifier = errors.New("code_verifier is required for twitter oauth")
	ErrInvalidUserType     = errors.New("invalid user type")

	ErrTooManyRequests = errors.New("too many requests")
)
