package gateway

import (
	"context"
	"net/http"
)

// CreateOTP asks the server to email a one-time passcode. No token needed.
func (c *Client) CreateOTP(ctx context.Context, email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	req := map[string]string{"email": email}
	return c.call(ctx, http.MethodPost, "/createOTP", req, nil)
}

// VerifyOTP exchanges an emailed passcode for an auth token. The caller is
// responsible for persisting the token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if otp == "" {
		return "", &ValidationError{Field: "otp", Reason: "must not be empty"}
	}

	req := map[string]string{"email": email, "otp": otp}
	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	if err := c.call(ctx, http.MethodPost, "/verifyOTP", req, &resp); err != nil {
		return "", err
	}
	return resp.AuthToken, nil
}
