// Package jamf is a client for the JAMF Pro universal and classic APIs,
// covering authentication and mobile device inventory.
package jamf

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultAPIRoot    = "/uapi/"
	DefaultProAPIRoot = "/api/"
	DefaultTimeout    = 30 * time.Second
	DefaultPageSize   = 100

	classicRoot = "JSSResource"
)

// Credentials identify the API user. When APIToken is set it is used as
// the bearer token directly; Username and Password are still used to log in
// again once that token expires.
type Credentials struct {
	Username string
	Password string
	APIToken string
}

// Options configures a Session.
type Options struct {
	ServerURL   string
	APIRoot     string // defaults to DefaultAPIRoot
	ProAPIRoot  string // defaults to DefaultProAPIRoot
	Credentials Credentials

	Insecure bool
	CAFile   string
	Timeout  time.Duration

	// HTTPClient overrides the client built from Insecure/CAFile/Timeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
	PageSize   int

	// Now is used for token expiry checks; defaults to time.Now.
	Now func() time.Time
}

// Session is an authenticated connection to one JAMF server. It is not safe
// for concurrent use.
type Session struct {
	serverURL string
	apiRoot   string
	proRoot   string
	creds     Credentials
	token     string
	expires   time.Time

	// ownsToken is set once the token came from login rather than from
	// Credentials.APIToken. Close only revokes owned tokens.
	ownsToken   bool
	invalidated bool

	httpClient *http.Client
	logger     *zap.Logger
	pageSize   int
	now        func() time.Time
}

func newSession(opts Options) (*Session, error) {
	if opts.ServerURL == "" {
		return nil, &ValidationError{Field: "server_url", Message: "server URL is required"}
	}
	s := &Session{
		serverURL:  strings.TrimRight(opts.ServerURL, "/"),
		apiRoot:    strings.Trim(opts.APIRoot, "/"),
		proRoot:    strings.Trim(opts.ProAPIRoot, "/"),
		creds:      opts.Credentials,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		pageSize:   opts.PageSize,
		now:        opts.Now,
	}
	if s.apiRoot == "" {
		s.apiRoot = strings.Trim(DefaultAPIRoot, "/")
	}
	if s.proRoot == "" {
		s.proRoot = strings.Trim(DefaultProAPIRoot, "/")
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.httpClient == nil {
		client, err := newHTTPClient(opts)
		if err != nil {
			return nil, err
		}
		s.httpClient = client
	}
	return s, nil
}

func newHTTPClient(opts Options) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	if !opts.Insecure && opts.CAFile == "" {
		return client, nil
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure} //nolint:gosec // user-configured
	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", opts.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	client.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	return client, nil
}

func (s *Session) apiURL(endpoint string) string {
	return s.serverURL + "/" + s.apiRoot + "/" + strings.TrimLeft(endpoint, "/")
}

func (s *Session) proURL(endpoint string) string {
	return s.serverURL + "/" + s.proRoot + "/" + strings.TrimLeft(endpoint, "/")
}

func (s *Session) classicURL(path string) string {
	return s.serverURL + "/" + classicRoot + "/" + strings.TrimLeft(path, "/")
}

type authMode int

const (
	authNone authMode = iota
	authBasic
	authBearer
)

type request struct {
	method      string
	url         string
	body        []byte
	contentType string
	accept      string
	auth        authMode
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *response) apiError(req request) *APIError {
	return &APIError{
		Method:     req.method,
		URL:        req.url,
		StatusCode: r.StatusCode,
		Body:       strings.TrimSpace(string(r.Body)),
	}
}

// send performs a single HTTP round trip. It does not check the status code.
func (s *Session) send(ctx context.Context, req request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	switch req.auth {
	case authBasic:
		httpReq.SetBasicAuth(s.creds.Username, s.creds.Password)
	case authBearer:
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Debug("jamf request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.method),
			zap.String("url", req.url),
			zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	s.logger.Debug("jamf request",
		zap.String("request_id", requestID),
		zap.String("method", req.method),
		zap.String("url", req.url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

// call sends an authenticated JSON request to the universal API and decodes
// the response into out when out is non-nil. Non-2xx responses come back as
// *AuthError (401/403) or *APIError.
func (s *Session) call(ctx context.Context, method, endpoint string, in, out any) (*response, error) {
	return s.callJSON(ctx, method, s.apiURL(endpoint), endpoint, in, out)
}

// pro is call for the Jamf Pro API root, which hosts prestages, buildings,
// departments, sites and smart group recalculation.
func (s *Session) pro(ctx context.Context, method, endpoint string, in, out any) (*response, error) {
	return s.callJSON(ctx, method, s.proURL(endpoint), endpoint, in, out)
}

func (s *Session) callJSON(ctx context.Context, method, url, endpoint string, in, out any) (*response, error) {
	req := request{
		method: method,
		url:    url,
		accept: "application/json",
	}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	resp, err := s.authorized(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, &SchemaError{Field: endpoint, Err: err}
		}
	}
	return resp, nil
}

// classic sends an authenticated request to the classic API.
func (s *Session) classic(ctx context.Context, method, path string, body []byte) (*response, error) {
	req := request{
		method: method,
		url:    s.classicURL(path),
		body:   body,
		accept: "application/xml",
	}
	if body != nil {
		req.contentType = "application/xml"
	}
	return s.authorized(ctx, req)
}

func (s *Session) authorized(ctx context.Context, req request) (*response, error) {
	if err := s.EnsureValid(ctx); err != nil {
		return nil, err
	}
	req.auth = authBearer
	resp, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.ok() {
		return resp, nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return resp, &AuthError{Op: req.method + " " + req.url, StatusCode: resp.StatusCode}
	}
	return resp, resp.apiError(req)
}
