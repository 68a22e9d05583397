package api

import (
	"net/http"
)

const sessionHeader = "X-Session-Secret"

// Authenticator prepares outgoing requests with credentials
type Authenticator interface {
	// Authenticate adds credentials to the request
	Authenticate(req *http.Request) error

	// Validate checks that usable credentials are present
	Validate() error
}

// TokenAuthenticator authenticates with a bearer access token, falling back
// to a session secret header when no token is set.
type TokenAuthenticator struct {
	AccessToken   string
	SessionSecret string
}

func (a *TokenAuthenticator) Authenticate(req *http.Request) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.AccessToken)
		return nil
	}
	req.Header.Set(sessionHeader, a.SessionSecret)
	return nil
}

func (a *TokenAuthenticator) Validate() error {
	if a.AccessToken == "" && a.SessionSecret == "" {
		return ErrNotAuthenticated
	}
	return nil
}
