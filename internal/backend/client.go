// Package backend talks to the restaurant REST API.  The API keeps the
// session in cookies (and also hands the tokens back in the login body),
// so the client carries a cookie jar plus the last bearer token and
// silently refreshes once when a request comes back 401.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// ErrLoginRequired is returned when the session cannot be renewed.  The
// caller is expected to send the user back to the login screen.
var ErrLoginRequired = errors.New("login required")

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	refreshPath   = "/auth/refresh"
)

// Session is the login/refresh reply.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	jar  *jar
	http *http.Client
	log  *slog.Logger

	// OnLoginRequired fires once per request that ends in ErrLoginRequired.
	OnLoginRequired func()

	mu      sync.Mutex
	access  string
	refresh string

	group singleflight.Group
}

// New returns a client for baseURL (e.g. https://api.example.com/api).
func New(baseURL string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		base: u,
		jar:  jar,
		http: &http.Client{Jar: jar, Timeout: timeout},
		log:  log.With("component", "backend"),
	}, nil
}

// Login opens a session.  Tokens are kept for later requests.
func (c *Client) Login(ctx context.Context, cred model.Credentials) (Session, error) {
	var s Session
	if err := c.send(ctx, http.MethodPost, "/auth/login", cred, &s); err != nil {
		return Session{}, err
	}
	c.setTokens(s.AccessToken, s.RefreshToken)
	return s, nil
}

// Logout tells the backend and forgets the local tokens either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.setTokens("", "")
	c.jar.reset()
	return err
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

// AccessToken returns the bearer token, falling back to the session cookie.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	tok := c.access
	c.mu.Unlock()
	if tok != "" {
		return tok
	}
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == accessCookie {
			return ck.Value
		}
	}
	return ""
}

// SetTokens restores a previously obtained session.
func (c *Client) SetTokens(access, refresh string) { c.setTokens(access, refresh) }

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = access
	if refresh != "" || access == "" {
		c.refresh = refresh
	}
}

// Do sends in as JSON (when non-nil) and decodes the reply into out (when
// non-nil).  A 401 triggers one refresh and one retry.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	build, err := c.jsonRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	return c.withRefresh(ctx, method, path, build, out)
}

// Upload posts data as a single multipart file field.
func (c *Client) Upload(ctx context.Context, path, field, filename, contentType string, data []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	payload := buf.Bytes()
	return c.withRefresh(ctx, http.MethodPost, path, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	}, out)
}

func (c *Client) withRefresh(ctx context.Context, method, path string, build func() (*http.Request, error), out any) error {
	err := c.roundTrip(build, out)
	if !isUnauthorized(err) || strings.HasPrefix(path, "/auth/") {
		return err
	}
	c.log.Debug("session expired, refreshing", "method", method, "path", path)
	if rerr := c.renew(ctx); rerr != nil {
		c.log.Info("session refresh failed", "error", rerr)
		return c.loginRequired(err)
	}
	err = c.roundTrip(build, out)
	if isUnauthorized(err) {
		return c.loginRequired(err)
	}
	return err
}

func (c *Client) loginRequired(cause error) error {
	if c.OnLoginRequired != nil {
		c.OnLoginRequired()
	}
	return fmt.Errorf("%w: %w", ErrLoginRequired, cause)
}

// renew runs one refresh for all concurrent callers that hit a 401.
func (c *Client) renew(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		c.mu.Lock()
		payload := map[string]string{}
		if c.refresh != "" {
			payload[refreshCookie] = c.refresh
		}
		c.mu.Unlock()

		var s Session
		if err := c.send(context.WithoutCancel(ctx), http.MethodPost, refreshPath, payload, &s); err != nil {
			return nil, err
		}
		if s.AccessToken != "" {
			c.setTokens(s.AccessToken, s.RefreshToken)
		}
		return nil, nil
	})
	return err
}

// send is a single attempt without the refresh policy.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	build, err := c.jsonRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	return c.roundTrip(build, out)
}

// jsonRequest encodes in once and returns a builder that can be replayed.
func (c *Client) jsonRequest(ctx context.Context, method, path string, in any) (func() (*http.Request, error), error) {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = b
	}
	return func() (*http.Request, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := c.newRequest(ctx, method, path, r)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	u := *c.base
	u.Path = c.base.Path + ref.Path
	u.RawQuery = ref.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.mu.Lock()
	if c.access != "" {
		req.Header.Set("Authorization", "Bearer "+c.access)
	}
	c.mu.Unlock()
	return req, nil
}

func (c *Client) roundTrip(build func() (*http.Request, error), out any) error {
	req, err := build()
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}
	if resp.StatusCode >= 300 {
		return newAPIError(req.Method, strings.TrimPrefix(req.URL.Path, c.base.Path), resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// jar is a cookie jar that can be emptied on logout.
type jar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
}

func newJar() (*jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &jar{inner: inner}, nil
}

func (j *jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

func (j *jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *jar) reset() {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
