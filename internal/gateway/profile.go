package gateway

import (
	"context"
	"net/http"
)

// UpdateName replaces the caller's display name.
func (c *Client) UpdateName(ctx context.Context, name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "name": name}
	return c.call(ctx, http.MethodPost, "/updateName", req, nil)
}

// UpdateProfilePicture records an uploaded picture URL against the profile
// and returns the canonical URL the server stored, which may differ from
// the one submitted.
func (c *Client) UpdateProfilePicture(ctx context.Context, pictureURL string) (string, error) {
	tok, err := c.authToken()
	if err != nil {
		return "", err
	}

	req := map[string]string{"auth_token": tok, "profile_picture_url": pictureURL}
	var resp struct {
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if err := c.call(ctx, http.MethodPost, "/updateProfilePicture", req, &resp); err != nil {
		return "", err
	}
	return resp.ProfilePictureURL, nil
}
