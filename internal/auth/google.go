package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleProfile is what the OAuth hand-off yields. The core's only
// responsibility at this boundary: if no identity exists for Email, create
// one, then issue an identity token exactly as for password login.
type GoogleProfile struct {
	Email string
	Name  string
}

// googleIDClaims are the claims we read from a Google ID token.
type googleIDClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleVerifier drives the Google OAuth code exchange and extracts a
// verified profile. ID tokens are verified against Google's JWKS endpoint;
// keyfunc caches and refreshes the keys based on HTTP cache headers. When the
// token response carries no ID token, the userinfo endpoint is the fallback.
type GoogleVerifier struct {
	oauth  *oauth2.Config
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewGoogleVerifier creates a verifier for the given OAuth config.
func NewGoogleVerifier(oauthConfig *oauth2.Config, jwksURL string, logger *slog.Logger) (*GoogleVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("google verifier initialized", "jwks_url", jwksURL)

	return &GoogleVerifier{
		oauth:  oauthConfig,
		jwks:   jwks,
		logger: logger,
	}, nil
}

// AuthURL returns the consent-screen URL for the given CSRF state.
func (v *GoogleVerifier) AuthURL(state string) string {
	return v.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the callback code for a token.
func (v *GoogleVerifier) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := v.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// Profile extracts a verified (email, name) pair from the exchanged token.
func (v *GoogleVerifier) Profile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		profile, err := v.verifyIDToken(idToken)
		if err == nil {
			return profile, nil
		}
		v.logger.Warn("id token verification failed, falling back to userinfo", "error", err)
	}
	return v.fetchUserinfo(ctx, token)
}

// verifyIDToken validates the ID token signature against Google's JWKS and
// checks the audience is our client.
func (v *GoogleVerifier) verifyIDToken(raw string) (*GoogleProfile, error) {
	claims := &googleIDClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc,
		// Prevent algorithm confusion attacks - Google signs with RS256/ES256
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithAudience(v.oauth.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, errors.New("id token missing email claim")
	}
	return &GoogleProfile{Email: claims.Email, Name: claims.Name}, nil
}

// fetchUserinfo asks the userinfo endpoint for the profile.
func (v *GoogleVerifier) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(v.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	userinfo, err := svc.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	if userinfo.Email == "" {
		return nil, errors.New("userinfo missing email")
	}
	return &GoogleProfile{Email: userinfo.Email, Name: userinfo.Name}, nil
}
