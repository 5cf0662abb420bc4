package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/andresuchdata/invclose/backend-go/internal/config"
)

// ErrNotConfigured is returned when no Azure application is configured.
var ErrNotConfigured = errors.New("azure application is not configured")

// Token is the access token returned to the browser.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticator exchanges authorization codes for access tokens as a
// confidential client of the configured tenant.
type Authenticator struct {
	cfg config.GraphConfig
}

// NewAuthenticator creates an Authenticator for cfg.
func NewAuthenticator(cfg config.GraphConfig) *Authenticator {
	return &Authenticator{cfg: cfg}
}

func (a *Authenticator) oauthConfig(redirectURI string) *oauth2.Config {
	authority := a.cfg.Authority()
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       a.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authority + "/oauth2/v2.0/authorize",
			TokenURL:  authority + "/oauth2/v2.0/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Exchange trades an authorization code for an access token.
func (a *Authenticator) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !a.cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	oc := a.oauthConfig(redirectURI)
	tok, err := oc.Exchange(ctx, code, oauth2.SetAuthURLParam("scope", strings.Join(oc.Scopes, " ")))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	out := &Token{AccessToken: tok.AccessToken, TokenType: tok.Type()}
	if !tok.Expiry.IsZero() {
		out.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return out, nil
}

// ConfigJS renders the script that hands the public application settings to
// the browser file picker.
func ConfigJS(cfg config.GraphConfig) (string, error) {
	body, err := json.MarshalIndent(map[string]string{
		"clientId":  cfg.ClientID,
		"tenantId":  cfg.TenantID,
		"authority": cfg.Authority(),
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return "window.EXCEL_UP_CFG = " + string(body) + ";", nil
}
