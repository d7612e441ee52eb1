package adapthttp

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the optional SSO provider wiring. The zero value
// means SSO is disabled and the login/callback routes return 404.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// LoadOIDC discovers the provider and builds the authorization-code flow
// configuration. issuer may be empty, in which case SSO stays disabled.
func LoadOIDC(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	if issuer == "" {
		return OIDCConfig{}, nil
	}
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return OIDCConfig{}, fmt.Errorf("oidc: client id, secret and redirect url are required when an issuer is set")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc: discover provider: %w", err)
	}

	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
