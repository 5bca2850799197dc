package authcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/gemdesk/authcore/internal/rest"
)

// RefreshProfile re-fetches the user record and shop accesses from the
// server and installs them, recomputing effective permissions in the same
// critical section. This is how a mid-session permission change on the
// backend reaches the client without a re-login.
func (c *Client) RefreshProfile(ctx context.Context) (User, error) {
	if !c.isAuthenticated() {
		return User{}, ErrNotAuthenticated
	}

	payload, err := c.api.Me(ctx, c.tokens.AccessToken())
	if err != nil {
		return User{}, c.translate(err)
	}
	return c.applyProfile(payload), nil
}

// UpdateProfile patches the account profile. Nil fields in update are left
// unchanged. The server's view of the record is installed on success.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	if update.Name == nil && update.Email == nil {
		return User{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if update.Email != nil && !strings.Contains(*update.Email, "@") {
		return User{}, fmt.Errorf("%w: malformed email", ErrValidation)
	}
	if !c.isAuthenticated() {
		return User{}, ErrNotAuthenticated
	}

	payload, err := c.api.UpdateMe(ctx, c.tokens.AccessToken(), restProfileUpdate(update))
	if err != nil {
		return User{}, c.translate(err)
	}
	return c.applyProfile(payload), nil
}

// ChangePassword replaces the account password. Other sessions stay alive;
// the server decides whether to rotate them.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new password are required", ErrValidation)
	}
	if !c.isAuthenticated() {
		return ErrNotAuthenticated
	}
	return c.translate(c.api.ChangePassword(ctx, c.tokens.AccessToken(), oldPassword, newPassword))
}

// ForgotPassword requests a reset email. Works while anonymous.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return c.translate(c.api.ForgotPassword(ctx, email))
}

// ResetPassword completes a password reset with the emailed token. Works
// while anonymous.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return fmt.Errorf("%w: reset token and new password are required", ErrValidation)
	}
	return c.translate(c.api.ResetPassword(ctx, resetToken, newPassword))
}

// EnableTwoFactor starts two-factor provisioning and returns the secret and
// otpauth URL for the authenticator app. Provisioning is not active until
// ConfirmTwoFactor succeeds.
func (c *Client) EnableTwoFactor(ctx context.Context) (TwoFactorSetup, error) {
	if !c.isAuthenticated() {
		return TwoFactorSetup{}, ErrNotAuthenticated
	}

	resp, err := c.api.TwoFactorEnable(ctx, c.tokens.AccessToken())
	if err != nil {
		return TwoFactorSetup{}, c.translate(err)
	}
	return TwoFactorSetup{Secret: resp.Secret, OTPAuthURL: resp.OTPAuthURL}, nil
}

// ConfirmTwoFactor activates provisioning with a device code and returns
// the freshly issued backup codes. This is the only time the codes are
// visible; the client does not retain them.
func (c *Client) ConfirmTwoFactor(ctx context.Context, code string) ([]string, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrValidation)
	}
	if !c.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.api.TwoFactorVerify(ctx, c.tokens.AccessToken(), code)
	if err != nil {
		return nil, c.translate(err)
	}
	return resp.BackupCodes, nil
}

// applyProfile installs a refreshed user payload. If the current shop is no
// longer in the refreshed access list its selection is dropped, and
// effective permissions follow in the same critical section.
func (c *Client) applyProfile(payload *rest.UserPayload) User {
	user, accesses := c.decodeUser(payload)

	c.mu.Lock()
	c.state.user = user
	c.state.shopAccesses = accesses
	if c.state.currentShopID != "" && c.findAccessLocked(c.state.currentShopID) == nil {
		c.state.currentShopID = ""
	}
	c.recomputeEffectiveLocked()
	c.mu.Unlock()

	return user
}

func restProfileUpdate(update ProfileUpdate) rest.UpdateProfileRequest {
	return rest.UpdateProfileRequest{Name: update.Name, Email: update.Email}
}

// DisableTwoFactor turns two-factor off. The server requires a current
// device code as proof of possession.
func (c *Client) DisableTwoFactor(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if !c.isAuthenticated() {
		return ErrNotAuthenticated
	}
	return c.translate(c.api.TwoFactorDisable(ctx, c.tokens.AccessToken(), code))
}
