package gateway

import (
	"context"
	"net/http"

	"github.com/serenidad/mealpack/internal/model"
)

// CreateShareCode mints a short opaque code granting one recipe. The code
// is exchanged out-of-band (QR, deep link).
func (c *Client) CreateShareCode(ctx context.Context, recipeID string) (string, error) {
	tok, err := c.authToken()
	if err != nil {
		return "", err
	}

	req := map[string]string{"auth_token": tok, "recipe_id": recipeID}
	var resp struct {
		ShareCode string `json:"share_code"`
	}
	if err := c.call(ctx, http.MethodPost, "/createShareCode", req, &resp); err != nil {
		return "", err
	}
	return resp.ShareCode, nil
}

// ClaimResult is the outcome of redeeming a share code.
type ClaimResult struct {
	Recipe   model.Recipe
	SharedBy *model.Author // nil when the server omits attribution
}

// ClaimShareCode redeems a code, adding the recipe to the caller's pack.
func (c *Client) ClaimShareCode(ctx context.Context, code string) (ClaimResult, error) {
	if code == "" {
		return ClaimResult{}, &ValidationError{Field: "share code", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return ClaimResult{}, err
	}

	req := map[string]string{"auth_token": tok, "share_code": code}
	var resp struct {
		Recipe   model.Recipe  `json:"recipe"`
		SharedBy *model.Author `json:"shared_by"`
	}
	if err := c.call(ctx, http.MethodPost, "/claimShareCode", req, &resp); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{Recipe: resp.Recipe, SharedBy: resp.SharedBy}, nil
}

// ShareRecipe grants a recipe directly to the user with the given email.
func (c *Client) ShareRecipe(ctx context.Context, recipeID, email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "recipe_id": recipeID, "email": email}
	return c.call(ctx, http.MethodPost, "/shareRecipe", req, nil)
}
