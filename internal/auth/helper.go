package auth

import (
	"net/url"

	"golang.org/x/oauth2"

	"github.com/pictora/pictora/internal/config"
)

// nativeCallbackPath is the redirect path the authorization server
// sends the browser to after the user grants access.
const nativeCallbackPath = "/oauth/authorize/native"

// Helper builds the user-facing authorization URL and recognizes the
// redirect carrying the authorization code. The external navigation
// observer feeds every outgoing URL through Code.
type Helper struct {
	oauth oauth2.Config
}

// NewHelper creates a Helper from the OAuth configuration.
func NewHelper(cfg *config.Config) *Helper {
	return &Helper{
		oauth: oauth2.Config{
			ClientID:    cfg.OAuth.ClientID,
			RedirectURL: cfg.OAuth.RedirectURI,
			Scopes:      cfg.OAuth.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuth.AuthorizeURL,
				TokenURL: cfg.OAuth.TokenURL,
			},
		},
	}
}

// AuthCodeURL returns the URL the user opens to grant access.
func (h *Helper) AuthCodeURL() string {
	return h.oauth.AuthCodeURL("")
}

// Code extracts the authorization code from a redirect URL. It reports
// false for any URL that is not the auth callback.
func (h *Helper) Code(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path != nativeCallbackPath {
		return "", false
	}
	code := u.Query().Get("code")
	return code, code != ""
}
