package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/identity/pkg/apiresponse"
	"github.com/hireloop/identity/pkg/binder"
	"github.com/hireloop/identity/pkg/validator"
)

// Router mounts every authentication endpoint.
func Router(svc *Service) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Post("/registration/individual", h.registerIndividual)
	r.Post("/registration/organisation", h.registerOrganisation)
	r.Post("/login", h.login)
	r.Post("/change-password", h.changePassword)
	r.Post("/request-password-reset", h.requestPasswordReset)
	r.Post("/reset-password", h.resetPassword)
	r.Post("/send-otp-reset-password", h.sendResetOTP)
	r.Post("/verify-otp-reset-password", h.verifyOTPReset)
	r.Get("/profile_details", h.profile)
	r.Post("/oauth/callback", h.oauthCallback)
	r.Post("/token/refresh", h.tokenRefresh)
	return r
}

type handlers struct {
	svc *Service
}

func (h *handlers) registerIndividual(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[IndividualRegistrationRequest](w, r)
	if !ok {
		return
	}
	user, err := h.svc.RegisterIndividual(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.Created(w, "Individual User successfully registered.", map[string]any{
		"user_id": user.ID.String(),
	})
}

func (h *handlers) registerOrganisation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[OrganisationRegistrationRequest](w, r)
	if !ok {
		return
	}
	org, err := h.svc.RegisterOrganisation(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.Created(w, "Organisation successfully registered.", map[string]any{
		"org_id": org.ID.String(),
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[LoginRequest](w, r)
	if !ok {
		return
	}
	pair, err := h.svc.Login(r.Context(), requestBaseURL(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Successfully logged in.", pair)
}

func (h *handlers) changePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[ChangePasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.ChangePassword(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Password changed successfully.", nil)
}

func (h *handlers) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[RequestPasswordResetRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Password reset link sent to your email.", nil)
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[ResetPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Password reset successfully.", nil)
}

func (h *handlers) sendResetOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[RequestPasswordResetRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.SendResetOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "OTP sent to your email.", nil)
}

func (h *handlers) verifyOTPReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[OTPResetPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.VerifyOTPReset(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Password reset successfully.", nil)
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context(), requestBaseURL(r))
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Profile details fetched successfully.", profile)
}

func (h *handlers) oauthCallback(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[OAuthCallbackRequest](w, r)
	if !ok {
		return
	}
	result, err := h.svc.OAuthLogin(r.Context(), requestBaseURL(r), req)
	if err != nil {
		writeOAuthError(w, err)
		return
	}
	if result.Created {
		apiresponse.OK(w, "New user created, login successful.", result.Tokens)
		return
	}
	apiresponse.OK(w, "User already exists, login successful.", result.Tokens)
}

func (h *handlers) tokenRefresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[TokenRefreshRequest](w, r)
	if !ok {
		return
	}
	pair, err := h.svc.RefreshTokens(r.Context(), requestBaseURL(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Token refreshed successfully.", pair)
}

// decodeBody reads, strictly parses, and validates a JSON request body. On
// failure it writes the error response and reports false.
func decodeBody[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T

	if err := binder.JSON(r, &req); err != nil {
		apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", map[string]any{
			"errors": validator.ValidationErrors{{
				Field:   "body",
				Message: err.Error(),
				Type:    "value_error.jsondecode",
			}},
		})
		return req, false
	}

	if err := req.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", map[string]any{
				"errors": verrs,
			})
		} else {
			apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", nil)
		}
		return req, false
	}

	return req, true
}

// requestBaseURL reconstructs the externally visible origin of a request,
// honoring proxy forwarding headers.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}

// writeError maps domain errors onto the response envelope.
func writeError(w http.ResponseWriter, err error) {
	apiresponse.Error(w, statusForError(err), messageForError(err), nil)
}

// writeOAuthError differs from writeError where the oauth flow reports bad
// provider input as a client error, and keeps the provider's own failure
// text in the message.
func writeOAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidProvider), errors.Is(err, ErrMissingCodeVerifier):
		apiresponse.Error(w, http.StatusBadRequest, oauthMessage(err), nil)
	case errors.Is(err, ErrInvalidToken):
		apiresponse.Error(w, http.StatusBadRequest, oauthMessage(err), nil)
	case errors.Is(err, ErrAuthenticationFailed):
		apiresponse.Error(w, http.StatusUnauthorized, oauthMessage(err), nil)
	case errors.Is(err, ErrUserAlreadyExists):
		apiresponse.Error(w, http.StatusConflict, ErrUserAlreadyExists.Error(), nil)
	default:
		writeError(w, err)
	}
}

// oauthMessage flattens a joined provider error into one line.
func oauthMessage(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrEmailOrPhoneTaken),
		errors.Is(err, ErrUserEmailTaken),
		errors.Is(err, ErrOrganisationAlreadyExists),
		errors.Is(err, ErrOrganisationEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrInvalidAuthHeader):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrOrganisationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidProvider),
		errors.Is(err, ErrMissingCodeVerifier),
		errors.Is(err, ErrInvalidUserType):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// messageForError keeps internal failure details out of responses.
func messageForError(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		return "Something went wrong. Please try again later."
	}
	for _, sentinel := range []error{
		ErrUserAlreadyExists, ErrEmailOrPhoneTaken, ErrUserEmailTaken,
		ErrOrganisationAlreadyExists, ErrOrganisationEmailTaken,
		ErrAuthenticationFailed, ErrInvalidToken, ErrInvalidOTP, ErrInvalidAuthHeader,
		ErrRecordNotFound, ErrUserNotFound, ErrOrganisationNotFound,
		ErrInvalidProvider, ErrMissingCodeVerifier, ErrInvalidUserType,
		ErrTooManyRequests,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
