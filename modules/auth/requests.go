package auth

import (
	"github.com/hireloop/identity/pkg/validator"
)

// IndividualRegistrationRequest is the payload for individual sign-up.
type IndividualRegistrationRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganisationName string `json:"organisation_name,omitempty"`
	Email            string `json:"email"`
	Gender           int    `json:"gender"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	CountryCode      string `json:"country_code"`
	CountryCodeStr   string `json:"country_code_str,omitempty"`
	CellPhoneNumber1 string `json:"cell_phone_number_1"`
	Password         string `json:"password"`
}

func (r IndividualRegistrationRequest) Validate() error {
	return validator.Apply(
		validator.Required("first_name", r.FirstName),
		validator.MaxLength("first_name", r.FirstName, 100),
		validator.Required("last_name", r.LastName),
		validator.MaxLength("last_name", r.LastName, 100),
		validator.MaxLength("organisation_name", r.OrganisationName, 100),
		validator.Required("email", r.Email),
		validator.ValidEmail("email", r.Email),
		validator.MaxLength("email", r.Email, 254),
		validator.OneOf("gender", r.Gender,
			int(GenderMale), int(GenderFemale), int(GenderNonBinary), int(GenderOthers)),
		validator.Required("country_code", r.CountryCode),
		validator.MaxLength("country_code", r.CountryCode, 5),
		validator.Required("cell_phone_number_1", r.CellPhoneNumber1),
		validator.MaxLength("cell_phone_number_1", r.CellPhoneNumber1, 15),
		validator.LengthBetween("password", r.Password, 8, 20),
	)
}

// OrganisationRegistrationRequest is the payload for company sign-up.
type OrganisationRegistrationRequest struct {
	OrganisationName string `json:"organisation_name"`
	CEOFirstName     string `json:"ceo_first_name"`
	CEOLastName      string `json:"ceo_last_name"`
	Email            string `json:"email"`
	EstablishedYear  int    `json:"established_year"`
	Country          string `json:"country"`
	NoOfEmployee     string `json:"no_of_employee"`
	WebsiteLink      string `json:"website_link,omitempty"`
	LinkedIn         string `json:"linkedin,omitempty"`
	Password         string `json:"password"`
}

func (r OrganisationRegistrationRequest) Validate() error {
	return validator.Apply(
		validator.Required("organisation_name", r.OrganisationName),
		validator.MaxLength("organisation_name", r.OrganisationName, 100),
		validator.Required("ceo_first_name", r.CEOFirstName),
		validator.MaxLength("ceo_first_name", r.CEOFirstName, 100),
		validator.Required("ceo_last_name", r.CEOLastName),
		validator.MaxLength("ceo_last_name", r.CEOLastName, 100),
		validator.Required("email", r.Email),
		validator.ValidEmail("email", r.Email),
		validator.MaxLength("email", r.Email, 254),
		validator.IntBetween("established_year", r.EstablishedYear, 1800, 2100),
		validator.Required("country", r.Country),
		validator.MaxLength("country", r.Country, 100),
		validator.Required("no_of_employee", r.NoOfEmployee),
		validator.EmployeeRange("no_of_employee", r.NoOfEmployee),
		validator.MaxLength("website_link", r.WebsiteLink, 255),
		validator.MaxLength("linkedin", r.LinkedIn, 255),
		validator.LengthBetween("password", r.Password, 8, 20),
	)
}

// LoginRequest carries credential login input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email),
		validator.ValidEmail("email", r.Email),
		validator.MaxLength("email", r.Email, 254),
		validator.Required("password", r.Password),
	)
}

// ChangePasswordRequest rotates the password of the authenticated caller.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validator.Apply(
		validator.Required("current_password", r.CurrentPassword),
		validator.LengthBetween("new_password", r.NewPassword, 8, 20),
	)
}

// RequestPasswordResetRequest starts either reset flow.
type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r RequestPasswordResetRequest) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email),
		validator.ValidEmail("email", r.Email),
		validator.MaxLength("email", r.Email, 254),
	)
}

// ResetPasswordRequest completes the link-based reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validator.Apply(
		validator.Required("token", r.Token),
		validator.LengthBetween("new_password", r.NewPassword, 8, 20),
	)
}

// OTPResetPasswordRequest completes the OTP-based reset flow.
type OTPResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (r OTPResetPasswordRequest) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email),
		validator.ValidEmail("email", r.Email),
		validator.Required("otp", r.OTP),
		validator.LengthBetween("new_password", r.NewPassword, 8, 20),
	)
}

// OAuthCallbackRequest is the body posted after a provider redirect.
type OAuthCallbackRequest struct {
	Code         string `json:"code"`
	Provider     string `json:"provider"`
	RedirectURI  string `json:"redirect_uri"`
	UserType     int    `json:"user_type"`
	Gender       int    `json:"gender"`
	CodeVerifier string `json:"code_verifier,omitempty"`
	Platform     string `json:"platform,omitempty"`
}

func (r OAuthCallbackRequest) Validate() error {
	return validator.Apply(
		validator.Required("code", r.Code),
		validator.Required("provider", r.Provider),
		validator.Required("redirect_uri", r.RedirectURI),
		validator.OneOf("user_type", r.UserType,
			int(UserTypeSuperAdmin), int(UserTypeIndividual), int(UserTypeOrganisation)),
		validator.OneOf("gender", r.Gender,
			int(GenderMale), int(GenderFemale), int(GenderNonBinary), int(GenderOthers)),
	)
}

// TokenRefreshRequest carries the pair to validate plus the caller's
// declared principal type.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	UserType     int    `json:"user_type"`
}

func (r TokenRefreshRequest) Validate() error {
	return validator.Apply(
		validator.Required("refresh_token", r.RefreshToken),
		validator.Required("access_token", r.AccessToken),
	)
}
