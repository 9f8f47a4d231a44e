package jamf

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	authEndpoint       = "auth/tokens"
	validateEndpoint   = "auth/current"
	invalidateEndpoint = "auth/invalidateToken"
	serverURLEndpoint  = "v1/jamf-pro-server-url"

	// expirySkew treats a token as expired slightly early so a request
	// does not race the server-side expiry.
	expirySkew = 30 * time.Second
)

// Authenticate creates a Session and obtains a token for it.
func Authenticate(ctx context.Context, opts Options) (*Session, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}
	if s.creds.APIToken != "" {
		s.token = s.creds.APIToken
		s.expires = tokenExpiry(s.token)
		s.logger.Debug("using configured API token", zap.Time("expires", s.expires))
		if s.Authenticated() {
			return s, nil
		}
	}
	if err := s.login(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) login(ctx context.Context) error {
	if s.creds.Username == "" || s.creds.Password == "" {
		return &AuthError{Op: "login", Err: ErrNoCredentials}
	}

	resp, err := s.send(ctx, request{
		method: http.MethodPost,
		url:    s.apiURL(authEndpoint),
		accept: "application/json",
		auth:   authBasic,
	})
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	if !resp.ok() {
		return &AuthError{Op: "login", StatusCode: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return &AuthError{Op: "login", Err: &SchemaError{Field: authEndpoint, Err: err}}
	}
	if tr.Token == "" {
		return &AuthError{Op: "login", Err: &SchemaError{Field: "token"}}
	}

	s.token = tr.Token
	s.ownsToken = true
	s.expires = tr.Expires.Time
	if s.expires.IsZero() {
		s.expires = tokenExpiry(tr.Token)
	}
	s.logger.Info("authenticated to jamf",
		zap.String("server", s.serverURL),
		zap.String("username", s.creds.Username),
		zap.Time("expires", s.expires))
	return nil
}

// Token returns the current bearer token, or "" after Invalidate.
func (s *Session) Token() string {
	return s.token
}

// Expires returns the token expiry. The zero time means the expiry is
// unknown and the token is assumed valid until the server rejects it.
func (s *Session) Expires() time.Time {
	return s.expires
}

// Authenticated reports whether the session holds an unexpired token.
func (s *Session) Authenticated() bool {
	if s.token == "" {
		return false
	}
	return s.expires.IsZero() || s.now().Add(expirySkew).Before(s.expires)
}

// EnsureValid logs in again when the token is missing or about to expire.
// An invalidated session stays closed. The old token is kept when the
// login fails.
func (s *Session) EnsureValid(ctx context.Context) error {
	if s.invalidated {
		return &AuthError{Op: "ensure valid", Err: ErrInvalidated}
	}
	if s.Authenticated() {
		return nil
	}
	if s.token != "" {
		s.logger.Debug("token expired, re-authenticating", zap.Time("expired", s.expires))
	}
	return s.login(ctx)
}

// Validate asks the server whether the current token is still accepted.
func (s *Session) Validate(ctx context.Context) (bool, error) {
	if s.token == "" {
		return false, nil
	}
	resp, err := s.send(ctx, request{
		method: http.MethodPost,
		url:    s.apiURL(validateEndpoint),
		accept: "application/json",
		auth:   authBearer,
	})
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusOK, nil
}

// Invalidate revokes the token on the server and forgets it locally. This
// includes a token supplied through Credentials.APIToken. Calling it on a
// session without a token is a no-op, and a token the server already
// considers invalid is not an error.
func (s *Session) Invalidate(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	req := request{
		method: http.MethodPost,
		url:    s.apiURL(invalidateEndpoint),
		accept: "application/json",
		auth:   authBearer,
	}
	resp, err := s.send(ctx, req)
	if err != nil {
		return err
	}
	if !resp.ok() && resp.StatusCode != http.StatusUnauthorized {
		return resp.apiError(req)
	}

	s.forget()
	s.logger.Info("invalidated jamf token", zap.String("server", s.serverURL))
	return nil
}

func (s *Session) forget() {
	s.token = ""
	s.expires = time.Time{}
	s.ownsToken = false
	s.invalidated = true
}

// Close ends the session. A token the session obtained by logging in is
// revoked on the server, ignoring context cancellation of the caller so
// that deferred cleanup still gets there. A configured API token is only
// dropped locally, since other processes may share it.
func (s *Session) Close() error {
	if !s.ownsToken {
		s.forget()
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Invalidate(ctx)
}

// Available reports whether the JAMF server at opts.ServerURL answers. An
// unauthorized response still counts as available.
func Available(ctx context.Context, opts Options) bool {
	opts.Credentials = Credentials{}
	s, err := newSession(opts)
	if err != nil {
		return false
	}
	resp, err := s.send(ctx, request{
		method: http.MethodGet,
		url:    s.apiURL(serverURLEndpoint),
		accept: "application/json",
		auth:   authNone,
	})
	if err != nil {
		s.logger.Debug("jamf server unavailable", zap.Error(err))
		return false
	}
	return resp.ok() || resp.StatusCode == http.StatusUnauthorized
}

func statusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
