package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/hireloop/identity/pkg/sanitizer"
)

// OAuthConfig holds per-provider client credentials. Google keeps separate
// client IDs for its web and iOS flows; every other provider has one.
type OAuthConfig struct {
	GoogleWebClientID  string `env:"GOOGLE_WEB_CLIENT_ID"`
	GoogleIOSClientID  string `env:"GOOGLE_IOS_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`

	InstagramClientID     string `env:"INSTAGRAM_CLIENT_ID"`
	InstagramClientSecret string `env:"INSTAGRAM_CLIENT_SECRET"`

	LinkedInClientID     string `env:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`

	TwitterClientID     string `env:"TWITTER_CLIENT_ID"`
	TwitterClientSecret string `env:"TWITTER_CLIENT_SECRET"`

	YahooClientID     string `env:"YAHOO_CLIENT_ID"`
	YahooClientSecret string `env:"YAHOO_CLIENT_SECRET"`

	AppleClientID     string `env:"APPLE_CLIENT_ID"`
	AppleClientSecret string `env:"APPLE_CLIENT_SECRET"`

	ZohoClientID     string `env:"ZOHO_CLIENT_ID"`
	ZohoClientSecret string `env:"ZOHO_CLIENT_SECRET"`
}

// ProviderTokens is what a code exchange yields.
type ProviderTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// Identity is the normalized profile a provider reports. Raw keeps the
// provider's full response for storage.
type Identity struct {
	OAuthID   string
	Email     string
	FirstName string
	LastName  string
	Picture   string
	Raw       map[string]any
}

// OAuthProvider exchanges an authorization code and resolves the identity
// behind it.
type OAuthProvider interface {
	Name() string
	Exchange(ctx context.Context, code, redirectURI, codeVerifier, platform string) (*ProviderTokens, error)
	Identity(ctx context.Context, tokens *ProviderTokens, platform string) (*Identity, error)
}

// OAuthEngine routes callback payloads to the registered provider.
type OAuthEngine struct {
	providers map[string]OAuthProvider
}

func NewOAuthEngine(providers ...OAuthProvider) *OAuthEngine {
	e := &OAuthEngine{providers: make(map[string]OAuthProvider, len(providers))}
	for _, p := range providers {
		e.providers[p.Name()] = p
	}
	return e
}

// NewOAuthEngineFromConfig registers every provider the platform supports.
// The HTTP client is shared across providers; nil uses http.DefaultClient.
func NewOAuthEngineFromConfig(cfg OAuthConfig, client *http.Client) *OAuthEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return NewOAuthEngine(
		NewGoogleProvider(cfg.GoogleWebClientID, cfg.GoogleIOSClientID, cfg.GoogleClientSecret, client),
		NewFacebookProvider(cfg.FacebookClientID, cfg.FacebookClientSecret, client),
		NewInstagramProvider(cfg.InstagramClientID, cfg.InstagramClientSecret, client),
		NewLinkedInProvider(cfg.LinkedInClientID, cfg.LinkedInClientSecret, client),
		NewTwitterProvider(cfg.TwitterClientID, cfg.TwitterClientSecret, client),
		NewYahooProvider(cfg.YahooClientID, cfg.YahooClientSecret, client),
		NewAppleProvider(cfg.AppleClientID, cfg.AppleClientSecret, client),
		NewZohoProvider(cfg.ZohoClientID, cfg.ZohoClientSecret, client),
	)
}

// Provider looks up a registered provider by its lowercase name.
func (e *OAuthEngine) Provider(name string) (OAuthProvider, bool) {
	p, ok := e.providers[strings.ToLower(name)]
	return p, ok
}

// OAuthLoginResult distinguishes a returning account from a first visit.
type OAuthLoginResult struct {
	Tokens  *TokenPair
	Created bool
}

// OAuthLogin completes a provider callback. Accounts are keyed strictly by
// (oauth_id, provider); the email a provider reports is recorded but never
// used for matching.
func (s *Service) OAuthLogin(ctx context.Context, baseURL string, req OAuthCallbackRequest) (*OAuthLoginResult, error) {
	providerName := strings.ToLower(req.Provider)
	provider, ok := s.oauth.Provider(providerName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, req.Provider)
	}

	if providerName == "twitter" && req.CodeVerifier == "" {
		return nil, ErrMissingCodeVerifier
	}

	platform := req.Platform
	if platform == "" {
		platform = "web"
	}

	tokens, err := provider.Exchange(ctx, req.Code, req.RedirectURI, req.CodeVerifier, platform)
	if err != nil {
		return nil, errors.Join(ErrAuthenticationFailed, err)
	}

	identity, err := provider.Identity(ctx, tokens, platform)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if identity.OAuthID == "" {
		return nil, fmt.Errorf("%w: oauth id missing from provider response", ErrInvalidToken)
	}

	raw := identity.Raw
	if raw == nil {
		raw = map[string]any{}
	}
	raw["access_token"] = tokens.AccessToken
	raw["refresh_token"] = tokens.RefreshToken
	details := marshalOAuthDetails(raw)

	user, err := s.users.GetByOAuth(ctx, identity.OAuthID, providerName)
	switch {
	case err == nil:
		if err := s.users.UpdateOAuthDetails(ctx, user.ID, details); err != nil {
			s.log.WarnContext(ctx, "failed to refresh oauth details", "error", err)
		}
		pair, err := s.issuePair(principalRecord{user: user}, baseURL, false, true)
		if err != nil {
			return nil, err
		}
		return &OAuthLoginResult{Tokens: pair}, nil

	case errors.Is(err, ErrUserNotFound):
		user = &User{
			ID:             uuid.New(),
			FirstName:      identity.FirstName,
			LastName:       identity.LastName,
			UserType:       UserType(req.UserType),
			Gender:         Gender(req.Gender),
			ProfilePicture: identity.Picture,
			OAuthProvider:  providerName,
			OAuthID:        identity.OAuthID,
			OAuthEmail:     sanitizer.NormalizeEmail(identity.Email),
			OAuthDetails:   details,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		pair, err := s.issuePair(principalRecord{user: user}, baseURL, false, true)
		if err != nil {
			return nil, err
		}
		return &OAuthLoginResult{Tokens: pair, Created: true}, nil

	default:
		return nil, err
	}
}

// decodeJSONResponse reads a JSON object body, failing on non-2xx statuses.
func decodeJSONResponse(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d: %v", resp.StatusCode, body)
	}
	return body, nil
}

// exchangeCode runs the authorization-code grant against the provider's
// token endpoint using the shared HTTP client.
func exchangeCode(ctx context.Context, client *http.Client, cfg oauth2.Config, code, redirectURI string, opts ...oauth2.AuthCodeOption) (*ProviderTokens, error) {
	cfg.RedirectURL = redirectURI
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	return &ProviderTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken,
	}, nil
}

func stringClaim(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
