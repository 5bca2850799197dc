package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config carries the transport settings for the API client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client issues typed requests against the back-office API. It is stateless
// beyond its transport: credentials are passed per call.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
}

// New creates a Client. When httpClient is nil a dedicated client with
// cfg.Timeout is used.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      httpClient,
	}
}

// Login posts credentials. A 2FA-gated account answers 200 with
// RequiresTwoFactor set instead of a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TwoFactorLoginVerify exchanges a temp token plus one proof (device code or
// backup code) for a full token pair.
func (c *Client) TwoFactorLoginVerify(ctx context.Context, tempToken, code string, backup bool) (*LoginResponse, error) {
	req := twoFactorLoginRequest{TempToken: tempToken, Code: code, IsBackupCode: backup}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/login-verify", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := refreshRequest{RefreshToken: refreshToken}
	var resp RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current session server-side.
func (c *Client) Logout(ctx context.Context, access string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", access, nil, nil)
}

// LogoutAll invalidates every session of the account.
func (c *Client) LogoutAll(ctx context.Context, access string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout-all", access, nil, nil)
}

// Sessions fetches the raw session list payload. The shape varies across
// backend versions; callers normalize through the session package.
func (c *Client) Sessions(ctx context.Context, access string) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/auth/sessions", access, nil)
}

// RevokeSession deletes one session by token id.
func (c *Client) RevokeSession(ctx context.Context, access, tokenID string) error {
	path := "/auth/sessions/" + url.PathEscape(tokenID)
	return c.do(ctx, http.MethodDelete, path, access, nil, nil)
}

// Me fetches the authenticated user's profile and shop access records.
func (c *Client) Me(ctx context.Context, access string) (*UserPayload, error) {
	var resp UserPayload
	if err := c.do(ctx, http.MethodGet, "/users/me", access, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMe patches the authenticated user's profile.
func (c *Client) UpdateMe(ctx context.Context, access string, req UpdateProfileRequest) (*UserPayload, error) {
	var resp UserPayload
	if err := c.do(ctx, http.MethodPatch, "/users/me", access, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, access, oldPassword, newPassword string) error {
	req := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/password/change", access, req, nil)
}

// ForgotPassword requests a reset email. Always unauthenticated.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req := forgotPasswordRequest{Email: email}
	return c.do(ctx, http.MethodPost, "/auth/password/forgot", "", req, nil)
}

// ResetPassword completes a reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	req := resetPasswordRequest{Token: resetToken, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/password/reset", "", req, nil)
}

// TwoFactorEnable starts 2FA provisioning for the account.
func (c *Client) TwoFactorEnable(ctx context.Context, access string) (*TwoFactorSetupResponse, error) {
	var resp TwoFactorSetupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/enable", access, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TwoFactorVerify confirms provisioning with a device code and returns the
// freshly issued backup codes.
func (c *Client) TwoFactorVerify(ctx context.Context, access, code string) (*TwoFactorConfirmResponse, error) {
	req := twoFactorCodeRequest{Code: code}
	var resp TwoFactorConfirmResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/verify", access, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TwoFactorDisable turns 2FA off; the server requires a current code.
func (c *Client) TwoFactorDisable(ctx context.Context, access, code string) error {
	req := twoFactorCodeRequest{Code: code}
	return c.do(ctx, http.MethodPost, "/auth/2fa/disable", access, req, nil)
}

func (c *Client) do(ctx context.Context, method, path, access string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, access, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path, access string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures pass through untyped; the caller maps them to
		// its network error kind.
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}
