package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

func fetchUserInfo(ctx context.Context, client *http.Client, rawURL string, header http.Header) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	return decodeJSONResponse(resp)
}

// FacebookProvider resolves identity through the Graph API; Facebook issues
// no ID token, so the access token itself proves the session.
type FacebookProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewFacebookProvider(clientID, clientSecret string, client *http.Client) *FacebookProvider {
	return &FacebookProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *FacebookProvider) Name() string { return "facebook" }

func (p *FacebookProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://graph.facebook.com/v10.0/oauth/access_token"},
	}, code, redirectURI)
}

func (p *FacebookProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	infoURL := "https://graph.facebook.com/me?fields=id,name,email,picture&access_token=" +
		url.QueryEscape(tokens.AccessToken)
	body, err := fetchUserInfo(ctx, p.client, infoURL, nil)
	if err != nil {
		return nil, err
	}

	// The picture field nests the URL under picture.data.url.
	var picture string
	if obj, ok := body["picture"].(map[string]any); ok {
		if data, ok := obj["data"].(map[string]any); ok {
			picture = stringClaim(data, "url")
		}
	}

	return &Identity{
		OAuthID:   stringClaim(body, "id"),
		Email:     stringClaim(body, "email"),
		FirstName: stringClaim(body, "name"),
		Picture:   picture,
		Raw:       body,
	}, nil
}

// InstagramProvider resolves identity through the Instagram Graph API. The
// basic-display scope exposes no email, so accounts created through it are
// keyed purely by the numeric profile id.
type InstagramProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewInstagramProvider(clientID, clientSecret string, client *http.Client) *InstagramProvider {
	return &InstagramProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *InstagramProvider) Name() string { return "instagram" }

func (p *InstagramProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://api.instagram.com/oauth/access_token"},
	}, code, redirectURI)
}

func (p *InstagramProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	infoURL := "https://graph.instagram.com/me?fields=id,username,account_type&access_token=" +
		url.QueryEscape(tokens.AccessToken)
	body, err := fetchUserInfo(ctx, p.client, infoURL, nil)
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID:   stringClaim(body, "id"),
		FirstName: stringClaim(body, "username"),
		Raw:       body,
	}, nil
}

// LinkedInProvider resolves identity through the OpenID userinfo endpoint
// using the access token.
type LinkedInProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewLinkedInProvider(clientID, clientSecret string, client *http.Client) *LinkedInProvider {
	return &LinkedInProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *LinkedInProvider) Name() string { return "linkedin" }

func (p *LinkedInProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://www.linkedin.com/oauth/v2/accessToken"},
	}, code, redirectURI)
}

func (p *LinkedInProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	header := http.Header{"Authorization": []string{"Bearer " + tokens.AccessToken}}
	body, err := fetchUserInfo(ctx, p.client, "https://api.linkedin.com/v2/userinfo", header)
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID:   stringClaim(body, "sub"),
		Email:     stringClaim(body, "email"),
		FirstName: stringClaim(body, "given_name"),
		LastName:  stringClaim(body, "family_name"),
		Picture:   stringClaim(body, "picture"),
		Raw:       body,
	}, nil
}

// TwitterProvider uses the OAuth 2.0 PKCE flow: the token endpoint demands
// HTTP basic credentials plus the code verifier.
type TwitterProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewTwitterProvider(clientID, clientSecret string, client *http.Client) *TwitterProvider {
	return &TwitterProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *TwitterProvider) Name() string { return "twitter" }

func (p *TwitterProvider) Exchange(ctx context.Context, code, redirectURI, codeVerifier, _ string) (*ProviderTokens, error) {
	if codeVerifier == "" {
		return nil, ErrMissingCodeVerifier
	}
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  "https://api.twitter.com/2/oauth2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}, code, redirectURI, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
}

func (p *TwitterProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	header := http.Header{"Authorization": []string{"Bearer " + tokens.AccessToken}}
	body, err := fetchUserInfo(ctx, p.client, "https://api.twitter.com/2/users/me", header)
	if err != nil {
		return nil, err
	}

	data, ok := body["data"].(map[string]any)
	if !ok || stringClaim(data, "id") == "" {
		return nil, fmt.Errorf("incomplete user information received from twitter")
	}

	return &Identity{
		OAuthID:   stringClaim(data, "id"),
		FirstName: stringClaim(data, "name"),
		Picture:   stringClaim(data, "profile_image_url"),
		Raw:       data,
	}, nil
}

// YahooProvider resolves identity through Yahoo's userinfo endpoint, which
// takes the ID token as a query parameter and the access token as bearer.
type YahooProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewYahooProvider(clientID, clientSecret string, client *http.Client) *YahooProvider {
	return &YahooProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://api.login.yahoo.com/oauth2/get_token"},
	}, code, redirectURI)
}

func (p *YahooProvider) Identity(ctx context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	infoURL := "https://api.login.yahoo.com/openid/v1/userinfo?id_token=" + url.QueryEscape(tokens.IDToken)
	header := http.Header{"Authorization": []string{"Bearer " + tokens.AccessToken}}
	body, err := fetchUserInfo(ctx, p.client, infoURL, header)
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID:   stringClaim(body, "sub"),
		Email:     stringClaim(body, "email"),
		FirstName: stringClaim(body, "given_name"),
		LastName:  stringClaim(body, "family_name"),
		Picture:   stringClaim(body, "picture"),
		Raw:       body,
	}, nil
}

// ZohoProvider reads the identity straight out of the ID token payload.
// Zoho publishes no JWKS endpoint for these tokens; the payload is decoded
// without signature verification, trusting the TLS exchange that fetched it.
type ZohoProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewZohoProvider(clientID, clientSecret string, client *http.Client) *ZohoProvider {
	return &ZohoProvider{clientID: clientID, clientSecret: clientSecret, client: client}
}

func (p *ZohoProvider) Name() string { return "zoho" }

func (p *ZohoProvider) Exchange(ctx context.Context, code, redirectURI, _, _ string) (*ProviderTokens, error) {
	return exchangeCode(ctx, p.client, oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: "https://accounts.zoho.in/oauth/v2/token"},
	}, code, redirectURI)
}

func (p *ZohoProvider) Identity(_ context.Context, tokens *ProviderTokens, _ string) (*Identity, error) {
	claims, err := decodeUnverifiedJWTPayload(tokens.IDToken)
	if err != nil {
		return nil, err
	}
	return &Identity{
		OAuthID:   stringClaim(claims, "sub"),
		Email:     stringClaim(claims, "email"),
		FirstName: stringClaim(claims, "first_name"),
		LastName:  stringClaim(claims, "last_name"),
		Picture:   stringClaim(claims, "profile_picture"),
		Raw:       claims,
	}, nil
}

func decodeUnverifiedJWTPayload(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed jwt: expected 3 segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decoding jwt payload: %w", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parsing jwt payload: %w", err)
	}
	return claims, nil
}
