package rest

import "time"

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"deviceName,omitempty"`
	ClientIP   string `json:"clientIp,omitempty"`
	ClientID   string `json:"clientId,omitempty"`
}

// LoginResponse covers both the fully-authenticated and the 2FA-pending
// outcomes of login and login-verify.
type LoginResponse struct {
	RequiresTwoFactor bool         `json:"requires2FA"`
	TempToken         string       `json:"tempToken,omitempty"`
	AccessToken       string       `json:"accessToken,omitempty"`
	RefreshToken      string       `json:"refreshToken,omitempty"`
	User              *UserPayload `json:"user,omitempty"`
}

// RefreshResponse is the POST /auth/refresh body on success.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserPayload is the profile record from /users/me and login responses.
type UserPayload struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	Role         string              `json:"role"`
	ShopAccesses []ShopAccessPayload `json:"shopAccesses"`
}

// ShopAccessPayload is one per-shop access record as the server sends it.
// Permissions arrive as a loose string→bool map and are narrowed to the
// closed key enumeration by the client.
type ShopAccessPayload struct {
	ShopID          string          `json:"shopId"`
	Role            string          `json:"role"`
	Permissions     map[string]bool `json:"permissions"`
	IsActive        bool            `json:"isActive"`
	AccessStartDate time.Time       `json:"accessStartDate"`
	AccessEndDate   *time.Time      `json:"accessEndDate,omitempty"`
}

// UpdateProfileRequest is the PATCH /users/me body. Nil fields are omitted
// so the server treats them as unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// TwoFactorSetupResponse is returned by POST /auth/2fa/enable.
type TwoFactorSetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// TwoFactorConfirmResponse is returned by POST /auth/2fa/verify.
type TwoFactorConfirmResponse struct {
	BackupCodes []string `json:"backupCodes"`
}

type twoFactorLoginRequest struct {
	TempToken    string `json:"tempToken"`
	Code         string `json:"code"`
	IsBackupCode bool   `json:"isBackupCode"`
}

type twoFactorCodeRequest struct {
	Code string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
