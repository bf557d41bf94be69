// Package client is the Go SDK for the LogiTrack API: it keeps the login
// session, attaches the bearer token to every call and wraps each endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"logitrack-api/models"
	"logitrack-api/rates"

	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// bearerTransport attaches the session token and counts every call as activity
type bearerTransport struct {
	base     http.RoundTripper
	session  *Session
	activity func()
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.session.Token()
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if t.activity != nil {
		t.activity()
	}
	return t.base.RoundTrip(req)
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	log     *zap.Logger

	mu      sync.Mutex
	watcher *IdleWatcher
}

type Option func(*Client)

// WithLogger sets the logger; the default discards everything
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransport replaces the underlying transport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport.(*bearerTransport).base = rt
	}
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		log:     zap.NewNop(),
	}
	c.http = &http.Client{
		Timeout:   30 * time.Second,
		Transport: &bearerTransport{base: http.DefaultTransport, session: session, activity: c.touch},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) touch() {
	c.mu.Lock()
	w := c.watcher
	c.mu.Unlock()
	if w != nil {
		w.Touch()
	}
	if err := c.session.Touch(); err != nil {
		c.log.Debug("session touch failed", zap.Error(err))
	}
}

// WatchIdle logs the session out after IdleTimeout without requests and then
// calls onExpire with ErrSessionExpired.
func (c *Client) WatchIdle(timeout time.Duration, onExpire func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		c.watcher.Stop()
	}
	c.watcher = NewIdleWatcher(timeout, func() {
		if err := c.Logout(); err != nil {
			c.log.Warn("logout after idle timeout failed", zap.Error(err))
		}
		if onExpire != nil {
			onExpire(ErrSessionExpired)
		}
	})
}

func (c *Client) stopWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		c.watcher.Stop()
		c.watcher = nil
	}
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends a request and decodes a JSON answer into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send returns the response of a 2xx request; other statuses become *APIError
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, q), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Detail != "":
			apiErr.Message = body.Detail
		}
	}
	return apiErr
}

type authResponse struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

// Login authenticates and stores the session
func (c *Client) Login(ctx context.Context, email, password string) (models.UserInfo, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/login", nil, map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return models.UserInfo{}, err
	}
	if err := c.session.Set(resp.User, resp.Token); err != nil {
		return models.UserInfo{}, err
	}
	return resp.User, nil
}

// Register creates a client account and logs it in
func (c *Client) Register(ctx context.Context, name, email, password, phone string) (models.UserInfo, error) {
	var resp authResponse
	body := map[string]string{"name": name, "email": email, "password": password, "phone": phone}
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, body, &resp); err != nil {
		return models.UserInfo{}, err
	}
	if err := c.session.Set(resp.User, resp.Token); err != nil {
		return models.UserInfo{}, err
	}
	return resp.User, nil
}

// Logout forgets the session and stops the idle watcher
func (c *Client) Logout() error {
	c.stopWatch()
	return c.session.Clear()
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &resp)
	return resp.User, err
}

func (c *Client) Services(ctx context.Context) ([]rates.Service, error) {
	var resp struct {
		Services []rates.Service `json:"services"`
	}
	err := c.do(ctx, http.MethodGet, "/api/services", nil, nil, &resp)
	return resp.Services, err
}

func (c *Client) Cities(ctx context.Context) ([]rates.City, error) {
	var resp struct {
		Cities []rates.City `json:"cities"`
	}
	err := c.do(ctx, http.MethodGet, "/api/cities", nil, nil, &resp)
	return resp.Cities, err
}

// Rates asks the server for a quote
func (c *Client) Rates(ctx context.Context, req rates.QuoteRequest) (rates.Quote, error) {
	var q rates.Quote
	err := c.do(ctx, http.MethodPost, "/api/rates", nil, req, &q)
	return q, err
}

// SubmitBooking posts a finished booking; it satisfies statemachine.BookingSubmitter
func (c *Client) SubmitBooking(ctx context.Context, req models.BookingRequest) (models.BookingResponse, error) {
	var resp models.BookingResponse
	err := c.do(ctx, http.MethodPost, "/api/bookings/", nil, req, &resp)
	return resp, err
}

// ContactForm is the contact page payload
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (c *Client) Contact(ctx context.Context, form ContactForm) error {
	return c.do(ctx, http.MethodPost, "/api/contact/", nil, form, nil)
}
