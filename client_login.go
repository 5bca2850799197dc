package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/gemdesk/authcore/internal/rest"
)

// Login runs the primary credential exchange. Three outcomes:
//
//   - full authentication: tokens installed, user and shop accesses loaded,
//     effective permissions computed for the restored or sole shop;
//   - two-factor pending: only the challenge temp token is retained and the
//     result carries TwoFactorRequired; complete with VerifyTwoFactorLogin
//     or VerifyBackupCode;
//   - failure: state returns to anonymous with the error recorded.
//
// Login requires that no session is held: a client that is already
// authenticated fails with ErrAlreadyAuthenticated and keeps its session.
// Log out first to switch accounts. A pending two-factor challenge does not
// count as a session; a fresh Login replaces it.
//
// A second Login while one is in flight fails fast with ErrLoginInFlight;
// the UI is expected to disable the trigger, this is the backstop.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if c.isAuthenticated() {
		return LoginResult{}, ErrAlreadyAuthenticated
	}
	if !c.loginInFlight.CompareAndSwap(false, true) {
		c.metric(MetricLoginDuplicateSubmit)
		return LoginResult{}, ErrLoginInFlight
	}
	defer c.loginInFlight.Store(false)

	c.mu.Lock()
	c.state.status = StateAuthenticating
	c.state.lastErr = nil
	c.mu.Unlock()

	resp, err := c.api.Login(ctx, c.loginRequest(ctx, creds))
	if err != nil {
		terr := c.translate(err)
		c.failLogin(terr)
		c.metric(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLogin, false, terr, func() map[string]string {
			return map[string]string{"identifier": creds.Email}
		})
		return LoginResult{}, terr
	}

	if resp.RequiresTwoFactor {
		// Only the challenge token survives into the pending state; nothing
		// else from before this attempt is resolvable.
		c.mu.Lock()
		c.tokens.SetTemp(resp.TempToken)
		c.state = authState{status: StateTwoFactorPending}
		c.mu.Unlock()

		c.metric(MetricTwoFactorRequired)
		c.emitAudit(ctx, auditEventLogin, true, nil, func() map[string]string {
			return map[string]string{"identifier": creds.Email, "mfa": "pending"}
		})
		return LoginResult{TwoFactorRequired: true}, nil
	}

	user := c.completeLogin(ctx, resp.AccessToken, resp.RefreshToken, resp.User)
	c.metric(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLogin, true, nil, nil)
	c.logger.Debug().Str("user_id", user.ID).Msg("login completed")
	return LoginResult{User: user}, nil
}

// VerifyTwoFactorLogin completes a pending challenge with a device code. A
// rejected code keeps the challenge pending so the user can retry.
func (c *Client) VerifyTwoFactorLogin(ctx context.Context, code string) (LoginResult, error) {
	return c.verifyChallenge(ctx, code, false)
}

// VerifyBackupCode completes a pending challenge with a single-use backup
// code. A code the server already consumed fails with ErrBackupCodeConsumed
// rather than ErrInvalidTwoFactorCode; codes accepted here are appended to
// the UsedBackupCodes list.
func (c *Client) VerifyBackupCode(ctx context.Context, code string) (LoginResult, error) {
	return c.verifyChallenge(ctx, code, true)
}

func (c *Client) verifyChallenge(ctx context.Context, code string, backup bool) (LoginResult, error) {
	if code == "" {
		return LoginResult{}, fmt.Errorf("%w: code is required", ErrValidation)
	}

	temp := c.tokens.TempToken()
	if temp == "" {
		return LoginResult{}, ErrTwoFactorNotPending
	}

	eventType := auditEventTwoFactorLogin
	if backup {
		eventType = auditEventBackupCodeLogin
	}

	resp, err := c.api.TwoFactorLoginVerify(ctx, temp, code, backup)
	if err != nil {
		terr := c.translate(err)
		// Wrong or spent codes keep the challenge pending; everything else
		// (expired temp token, transport) does too. Only a fresh Login can
		// replace the challenge.
		switch {
		case backup && errors.Is(terr, ErrBackupCodeConsumed):
			c.metric(MetricBackupCodeReplay)
		case backup:
			c.metric(MetricTwoFactorFailure)
			terr = c.asBackupError(terr)
		default:
			c.metric(MetricTwoFactorFailure)
		}
		c.emitAudit(ctx, eventType, false, terr, nil)
		return LoginResult{}, terr
	}

	user := c.completeLogin(ctx, resp.AccessToken, resp.RefreshToken, resp.User)
	if backup {
		c.mu.Lock()
		c.usedCodes = append(c.usedCodes, code)
		c.mu.Unlock()
		c.metric(MetricBackupCodeUsed)
	}
	c.metric(MetricTwoFactorSuccess)
	c.emitAudit(ctx, eventType, true, nil, nil)
	return LoginResult{User: user}, nil
}

// asBackupError keeps backup-code failures distinguishable when the server
// answered with the generic invalid-code error.
func (c *Client) asBackupError(err error) error {
	if errors.Is(err, ErrInvalidTwoFactorCode) {
		return fmt.Errorf("%w: backup code rejected", ErrInvalidTwoFactorCode)
	}
	return err
}

// failLogin returns the client to a clean anonymous state with the cause
// recorded. Tokens and state reset in one critical section so no reader can
// observe the failure paired with residue from an earlier challenge.
func (c *Client) failLogin(cause error) {
	c.mu.Lock()
	c.tokens.Clear()
	c.state = authState{lastErr: cause}
	c.mu.Unlock()
}

func (c *Client) loginRequest(ctx context.Context, creds Credentials) rest.LoginRequest {
	return rest.LoginRequest{
		Email:      creds.Email,
		Password:   creds.Password,
		DeviceName: deviceNameFromContext(ctx),
		ClientIP:   clientIPFromContext(ctx),
		ClientID:   c.instanceID,
	}
}
