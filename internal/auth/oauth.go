package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/oauth2"

	"github.com/prospectr/prospectr-go/internal/config"
)

// OAuthConfig builds the oauth2 configuration for the external data provider
// from the application config. The provider's scopes are fixed: we only ever
// read profile data.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       []string{"r_profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.OAuth.AuthURL,
			TokenURL: cfg.OAuth.TokenURL,
		},
	}
}

// NewStateToken returns a random hex string used as the OAuth state
// parameter to tie the callback to the browser that started the flow.
func NewStateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ExchangeCode swaps an authorization code for a token.
func ExchangeCode(ctx context.Context, cfg *config.Config, code string) (*oauth2.Token, error) {
	return OAuthConfig(cfg).Exchange(ctx, code)
}
