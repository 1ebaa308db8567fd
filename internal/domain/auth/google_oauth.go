package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

const (
	googleProvider  = "google"
	googleIssuer    = "https://accounts.google.com"
	googleRevokeURL = "https://oauth2.googleapis.com/revoke"
)

var revokeClient = &http.Client{Timeout: 10 * time.Second}

// googleClaims is the subset of the ID token the account cares about.
type googleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

// googleGrant is a completed code exchange: verified claims plus the
// offline refresh token Google hands out on first consent.
type googleGrant struct {
	claims       googleClaims
	refreshToken string
}

// NewOAuthState returns a state, a PKCE verifier and its S256 challenge.
func NewOAuthState() (state, codeVerifier, codeChallenge string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}
	codeVerifier = oauth2.GenerateVerifier()
	return base64.RawURLEncoding.EncodeToString(buf), codeVerifier, CodeChallengeFromVerifier(codeVerifier), nil
}

// CodeChallengeFromVerifier computes the S256 PKCE challenge.
func CodeChallengeFromVerifier(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

func (s *service) GoogleAuthURL(_ context.Context, state, codeChallenge string) (string, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// GoogleCallback signs in the account linked to the Google subject, creating
// one on first sign-in. New accounts lack phone, age and gender, so their
// profile is reported incomplete until UpdateProfile fills it in.
func (s *service) GoogleCallback(ctx context.Context, code, codeVerifier string) (LoginResponse, error) {
	if _, err := s.googleOAuthConfig(); err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(codeVerifier) == "" {
		return LoginResponse{}, apperrors.Wrap("invalid_input", "missing oauth code or verifier", nil)
	}
	grant, err := s.googleExchange(ctx, code, codeVerifier)
	if err != nil {
		return LoginResponse{}, err
	}
	if grant.claims.Subject == "" {
		return LoginResponse{}, apperrors.Wrap("invalid_token", "google token has no subject", nil)
	}
	if !grant.claims.EmailVerified {
		return LoginResponse{}, apperrors.Wrap("invalid_credentials", "google account email not verified", nil)
	}

	identity, linked, err := s.repo.GetIdentity(ctx, googleProvider, grant.claims.Subject)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap("auth_error", "failed to fetch identity", err)
	}
	var user User
	if linked {
		user, err = s.returningGoogleUser(ctx, identity.UserID, grant)
	} else {
		user, err = s.registerGoogleUser(ctx, grant)
	}
	if err != nil {
		return LoginResponse{}, err
	}
	return s.buildLoginResponse(user)
}

// returningGoogleUser loads the linked account, adopting the Google photo
// when the profile has none and rotating the stored refresh token.
func (s *service) returningGoogleUser(ctx context.Context, userID int64, grant googleGrant) (User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if user.PhotoURL == "" && grant.claims.Picture != "" {
		user.PhotoURL = grant.claims.Picture
		user.UpdatedAt = s.now().UTC()
		if user, err = s.repo.Update(ctx, user); err != nil {
			return User{}, apperrors.Wrap("auth_error", "failed to update user", err)
		}
	}
	if grant.refreshToken != "" {
		if err := s.linkGoogleIdentity(ctx, userID, grant); err != nil {
			return User{}, err
		}
	}
	return user, nil
}

// registerGoogleUser creates a password-less account for a first-time Google
// sign-in. An existing email registration is never linked implicitly.
func (s *service) registerGoogleUser(ctx context.Context, grant googleGrant) (User, error) {
	email := normalizeEmail(grant.claims.Email)
	if _, taken, err := s.repo.GetByEmail(ctx, email); err != nil {
		return User{}, apperrors.Wrap("auth_error", "failed to check existing user", err)
	} else if taken {
		return User{}, apperrors.Wrap("account_linking_disabled", "This email is registered with a password. Sign in with it instead.", nil)
	}
	unusable, err := unusablePasswordHash()
	if err != nil {
		return User{}, apperrors.Wrap("auth_error", "failed to generate password hash", err)
	}
	now := s.now().UTC()
	user, err := s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: unusable,
		FullName:     googleFullName(grant.claims),
		PhotoURL:     grant.claims.Picture,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	switch {
	case errors.Is(err, ErrEmailExists):
		return User{}, apperrors.Wrap("email_exists", "Email already in use", err)
	case err != nil:
		return User{}, apperrors.Wrap("auth_error", "failed to create user", err)
	}
	if err := s.linkGoogleIdentity(ctx, user.ID, grant); err != nil {
		return User{}, err
	}
	s.logger.Info("user registered via google", "user_id", user.ID, "missing_fields", missingProfileFields(user))
	return user, nil
}

func (s *service) linkGoogleIdentity(ctx context.Context, userID int64, grant googleGrant) error {
	sealed, err := sealToken(s.cfg.Google.TokenEncryptionKey, grant.refreshToken)
	if err != nil {
		return apperrors.Wrap("auth_error", "failed to encrypt refresh token", err)
	}
	if _, err := s.repo.UpsertIdentity(ctx, Identity{
		UserID:          userID,
		Provider:        googleProvider,
		ProviderSubject: grant.claims.Subject,
		ProviderEmail:   grant.claims.Email,
		RefreshToken:    sealed,
	}); err != nil {
		return apperrors.Wrap("auth_error", "failed to persist identity", err)
	}
	return nil
}

// Logout revokes the stored Google grant and forgets it. Revocation failures
// are logged; the local copy is dropped either way.
func (s *service) Logout(ctx context.Context, userID int64) error {
	identity, linked, err := s.repo.GetIdentityByUser(ctx, userID, googleProvider)
	if err != nil {
		return apperrors.Wrap("auth_error", "failed to fetch identity", err)
	}
	if !linked || identity.RefreshToken == "" {
		return nil
	}
	if token, err := openToken(s.cfg.Google.TokenEncryptionKey, identity.RefreshToken); err != nil {
		s.logger.Warn("stored google token unreadable", "user_id", userID, "error", err)
	} else if err := revokeGoogleToken(ctx, token); err != nil {
		s.logger.Warn("google token revocation failed", "user_id", userID, "error", err)
	}
	identity.RefreshToken = ""
	if _, err := s.repo.UpsertIdentity(ctx, identity); err != nil {
		return apperrors.Wrap("auth_error", "failed to clear identity token", err)
	}
	return nil
}

func (s *service) googleOAuthConfig() (*oauth2.Config, error) {
	g := s.cfg.Google
	for _, v := range []string{g.ClientID, g.ClientSecret, g.RedirectURL, g.TokenEncryptionKey} {
		if strings.TrimSpace(v) == "" {
			return nil, apperrors.Wrap("auth_not_configured", "Google sign-in is not configured", nil)
		}
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

// exchangeGoogleCode is the production googleExchange: it redeems the code
// with the PKCE verifier and verifies the returned ID token.
func (s *service) exchangeGoogleCode(ctx context.Context, code, codeVerifier string) (googleGrant, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return googleGrant{}, err
	}
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return googleGrant{}, apperrors.Wrap("oauth_exchange_failed", "failed to exchange oauth code", err)
	}
	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return googleGrant{}, apperrors.Wrap("oauth_exchange_failed", "missing id_token in oauth response", nil)
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return googleGrant{}, apperrors.Wrap("auth_error", "failed to initialize oidc provider", err)
	}
	idToken, err := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return googleGrant{}, apperrors.Wrap("invalid_token", "failed to verify id token", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return googleGrant{}, apperrors.Wrap("invalid_token", "failed to parse id token claims", err)
	}
	if claims.Email == "" {
		return googleGrant{}, apperrors.Wrap("invalid_token", "missing email in id token", nil)
	}
	return googleGrant{claims: claims, refreshToken: token.RefreshToken}, nil
}

// googleFullName prefers the display name, then the given name, then the
// mailbox part of the address.
func googleFullName(claims googleClaims) string {
	for _, candidate := range []string{claims.Name, claims.GivenName} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return strings.Split(claims.Email, "@")[0]
}

// unusablePasswordHash hashes a random secret nobody knows, so Google
// accounts cannot sign in with a password.
func unusablePasswordHash() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(base64.RawStdEncoding.EncodeToString(secret)), bcrypt.DefaultCost)
	return string(hashed), err
}

func revokeGoogleToken(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := revokeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("google revoke returned status %d", resp.StatusCode)
	}
	return nil
}
