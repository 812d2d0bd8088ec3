package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	oidc "github.com/coreos/go-oidc"
	"golang.org/x/oauth2"
)

// oidcVerifier lazily discovers an OpenID issuer and verifies ID-token
// signatures against its published keys.
type oidcVerifier struct {
	issuer string
	client *http.Client

	once     sync.Once
	provider *oidc.Provider
	initErr  error
}

func (v *oidcVerifier) verify(ctx context.Context, rawIDToken, audience string) (map[string]any, error) {
	ctx = oidc.ClientContext(ctx, v.client)

	v.once.Do(func() {
		v.provider, v.initErr = oidc.NewProvider(ctx, v.issuer)
	})
	if v.initErr != nil {
		return nil, fmt.Errorf("discovering issuer %s: %w", v.issuer, v.initErr)
	}

	idToken, err := v.provider.Verifier(&oidc.Config{ClientID: audience}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verifying id token: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting id token claims: %w", err)
	}
	return claims, nil
}

// GoogleProvider verifies Google sign-in. The web and iOS apps carry
// different client IDs, selected by the callback's platform field.
type GoogleProvider struct {
	webClientID  string
	iosClientID  string
	clientSecret string
	client       *http.Client
	verifier     *oidcVerifier
}

func NewGoogleProvider(webClientID, iosClientID, clientSecret string, client *http.Client) *GoogleProvider {
	return &GoogleProvider{
		webClientID:  webClientID,
		iosClientID:  iosClientID,
		clientSecret: clientSecret,
		client:       client,
		verifier:     &oidcVerifier{issuer: "https://accounts.google.com", client: client},
	}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) clientID(platform string) string {
	if platform == "ios" {
		return p.iosClientID
	}
	return p.webClientID
}

func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI, _, platform string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID(platform),
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://oauth2.googleapis.com/token"},
	}, code, redirectURI)
}

func (p *GoogleProvider) Identity(ctx context.Context, tokens *ProviderTokens, platform string) (*Identity, error) {
	claims, err := p.verifier.verify(ctx, tokens.IDToken, p.clientID(platform))
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID:   stringClaim(claims, "sub"),
		Email:     stringClaim(claims, "email"),
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		Picture:   stringClaim(claims, "picture"),
		Raw:       claims,
	}, nil
}

// AppleProvider verifies Sign in with Apple. Apple's ID token carries only
// the subject and email; names arrive out of band and are left empty here.
type AppleProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
	verifier     *oidcVerifier
}

func NewAppleProvider(clientID, clientSecret string, client *http.Client) *AppleProvider {
	return &AppleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       client,
		verifier:     &oidcVerifier{issuer: "https://appleid.apple.com", client: client},
	}
}

func (p *AppleProvider) Name() string { return "apple" }

func (p *AppleProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://appleid.apple.com/auth/token"},
	}, code, redirectURI)
}

func (p *AppleProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	claims, err := p.verifier.verify(ctx, tokens.IDToken, p.clientID)
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID: stringClaim(claims, "sub"),
		Email:   stringClaim(claims, "email"),
		Raw:     claims,
	}, nil
}
