package directory

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the VRChat API. It logs in lazily, answers TOTP challenges,
// persists the session cookies and spaces requests to stay under the rate limit.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	now        func() time.Time
	newBackOff func() backoff.BackOff

	mu       sync.Mutex
	loggedIn bool
}

// currentUser is the subset of /auth/user the client reads.
type currentUser struct {
	ID                    string   `json:"id"`
	DisplayName           string   `json:"displayName"`
	RequiresTwoFactorAuth []string `json:"requiresTwoFactorAuth"`
}

// NewClient creates a directory client and restores any persisted session.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid directory base url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if cfg.CookieFile != "" {
		if err := LoadCookies(jar, base, cfg.CookieFile); err != nil {
			return nil, err
		}
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	limit := rate.Inf
	if cfg.RequestIntervalMS > 0 {
		limit = rate.Every(time.Duration(cfg.RequestIntervalMS) * time.Millisecond)
	}

	return &Client{
		cfg:     cfg,
		base:    base,
		http:    &http.Client{Jar: jar, Timeout: time.Duration(timeout) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		now:     time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
	}, nil
}

// Login authenticates and returns the display name of the logged in account.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) (string, error) {
	var user currentUser
	if err := c.do(ctx, http.MethodGet, "/auth/user", nil, true, &user); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if len(user.RequiresTwoFactorAuth) > 0 {
		if !slices.Contains(user.RequiresTwoFactorAuth, "totp") {
			return "", ErrTwoFactorUnsupported
		}
		c.logger.Info("Two-factor authentication required, submitting TOTP code")
		if err := c.verifyTOTP(ctx); err != nil {
			return "", err
		}
		if err := c.do(ctx, http.MethodGet, "/auth/user", nil, false, &user); err != nil {
			return "", fmt.Errorf("login failed after two-factor verification: %w", err)
		}
		if len(user.RequiresTwoFactorAuth) > 0 {
			return "", ErrTwoFactorFailed
		}
	}

	c.loggedIn = true
	if c.cfg.CookieFile != "" {
		if err := SaveCookies(c.http.Jar, c.base, c.cfg.CookieFile); err != nil {
			return "", err
		}
	}

	c.logger.Info("Logged in to directory", zap.String("account", user.DisplayName))
	return user.DisplayName, nil
}

func (c *Client) verifyTOTP(ctx context.Context) error {
	if c.cfg.TOTPSecret == "" {
		return ErrMissingTOTPSecret
	}
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, c.now())
	if err != nil {
		return fmt.Errorf("failed to generate TOTP code: %w", err)
	}

	var result struct {
		Verified bool `json:"verified"`
	}
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/auth/twofactorauth/totp/verify", body, false, &result); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return ErrTwoFactorFailed
		}
		return fmt.Errorf("two-factor verification request failed: %w", err)
	}
	if !result.Verified {
		return ErrTwoFactorFailed
	}
	return nil
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	_, err := c.loginLocked(ctx)
	return err
}

// Resolve returns the display name for a profile URL or user id.
// A rejected session triggers one fresh login before giving up.
func (c *Client) Resolve(ctx context.Context, key string) (string, error) {
	id := UserIDFromKey(key)
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if err := c.ensureLogin(ctx); err != nil {
		return "", err
	}

	name, err := c.displayName(ctx, id)
	if errors.Is(err, ErrUnauthorized) {
		c.logger.Warn("Directory session expired, logging in again")
		c.mu.Lock()
		c.loggedIn = false
		_, err = c.loginLocked(ctx)
		c.mu.Unlock()
		if err != nil {
			return "", err
		}
		name, err = c.displayName(ctx, id)
	}
	if err != nil {
		return "", err
	}

	c.logger.Debug("Resolved display name", zap.String("user_id", id), zap.String("display_name", name))
	return name, nil
}

func (c *Client) displayName(ctx context.Context, id string) (string, error) {
	var user struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, false, &user); err != nil {
		return "", err
	}
	if user.DisplayName == "" {
		return "", ErrEmptyDisplayName
	}
	return user.DisplayName, nil
}

// do performs a rate limited request, retrying 429 and 5xx responses with backoff,
// and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body any, basicAuth bool, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	op := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if basicAuth {
			req.Header.Set("Authorization", "Basic "+basicCredentials(c.cfg.Username, c.cfg.Password))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, backoff.Permanent(ErrUnauthorized)
		case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/users/"):
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrUserNotFound, strings.TrimPrefix(path, "/users/")))
		}

		statusErr := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if statusErr.Retryable() {
			c.logger.Warn("Directory request failed, retrying",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
			)
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(retries)), ctx)

	data, err := backoff.RetryWithData(op, policy)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// basicCredentials encodes the pair the way the API expects: each part
// percent-encoded before the usual base64 step.
func basicCredentials(username, password string) string {
	enc := func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	return base64.StdEncoding.EncodeToString([]byte(enc(username) + ":" + enc(password)))
}

// UserIDFromKey extracts the user id from a profile URL such as
// https://vrchat.com/home/user/usr_xxx, or returns a bare id unchanged.
func UserIDFromKey(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimRight(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	return key
}
