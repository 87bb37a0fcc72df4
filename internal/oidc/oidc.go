package oidc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Issuers Google signs ID tokens with; both spellings occur in practice.
var googleIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

// Claims are the identity fields the portal reads from an ID token.
type Claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Verifier checks a raw ID token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// GoogleVerifier validates ID tokens against Google's published key set.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier builds a verifier for clientID. keysCtx scopes background
// key set refreshes and should outlive individual requests. Each key set
// fetch is bounded by fetchTimeout when it is positive.
func NewGoogleVerifier(keysCtx context.Context, jwksURL, clientID string, fetchTimeout time.Duration) *GoogleVerifier {
	if fetchTimeout > 0 {
		keysCtx = oidc.ClientContext(keysCtx, &http.Client{Timeout: fetchTimeout})
	}
	keys := oidc.NewRemoteKeySet(keysCtx, jwksURL)
	// go-oidc compares the issuer against a single value; both Google
	// spellings are checked in Verify instead.
	v := oidc.NewVerifier("", keys, &oidc.Config{ClientID: clientID, SkipIssuerCheck: true})
	return &GoogleVerifier{verifier: v}
}

// Verify checks signature, audience, expiry and issuer of raw.
func (g *GoogleVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	idToken, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !googleIssuers[idToken.Issuer] {
		return nil, fmt.Errorf("unexpected issuer %q", idToken.Issuer)
	}
	var c Claims
	if err := idToken.Claims(&c); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return &c, nil
}
