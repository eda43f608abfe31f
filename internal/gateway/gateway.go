// Package gateway is the typed client for the MealPack HTTP API. Every
// operation is single-shot: no retries, no caching. Callers own retry
// policy; the optimistic layer owns rollback.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/model"
	"github.com/serenidad/mealpack/internal/token"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://serenidad.click/mealpack"

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root (no trailing slash).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client. The streaming
// endpoints require a client without a response timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client talks to the MealPack API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  token.Store
	log     zerolog.Logger
}

// NewClient creates a gateway client backed by the given token store.
func NewClient(tokens token.Store, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		// No client-level timeout: generation streams are long-lived.
		// One-shot calls bound their lifetime via ctx.
		http:   &http.Client{},
		tokens: tokens,
		log:    log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// authToken resolves the stored token, mapping its absence to
// ErrUnauthenticated before any network call.
func (c *Client) authToken() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", ErrUnauthenticated
	}
	return tok, nil
}

// call performs one JSON request/response round trip. A non-2xx status
// becomes a *RemoteError carrying the server's error message; a 2xx body
// that fails to decode into out becomes a *DecodeError.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gateway: marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("gateway: create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read %s response: %w", path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	return nil
}

// serverMessage extracts the "error" field from a failure body, if any.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// UserState is the combined fetch used on every screen mount and
// pull-to-refresh.
type UserState struct {
	Recipes []model.Recipe
	Profile model.UserProfile
}

// FetchUserState retrieves the caller's recipes and profile in one call.
func (c *Client) FetchUserState(ctx context.Context) (UserState, error) {
	tok, err := c.authToken()
	if err != nil {
		return UserState{}, err
	}

	var resp struct {
		Recipes []model.Recipe    `json:"recipes"`
		Profile model.UserProfile `json:"user_profile"`
	}
	req := map[string]string{"auth_token": tok}
	if err := c.call(ctx, http.MethodPost, "/auth", req, &resp); err != nil {
		return UserState{}, err
	}
	return UserState{Recipes: resp.Recipes, Profile: resp.Profile}, nil
}

// RecipeDraft holds the fields for a new recipe. Ingredients and directions
// are plain lines; the server assigns positions.
type RecipeDraft struct {
	Name        string
	Description string
	ImageURL    string
	Ingredients []string
	Directions  []string
}

func (d RecipeDraft) validate() error {
	if d.Name == "" {
		return &ValidationError{Field: "recipe name", Reason: "must not be empty"}
	}
	if len(d.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Reason: "at least one required"}
	}
	if len(d.Directions) == 0 {
		return &ValidationError{Field: "directions", Reason: "at least one required"}
	}
	return nil
}

// CreateRecipe creates a recipe and returns the server's canonical copy.
func (c *Client) CreateRecipe(ctx context.Context, draft RecipeDraft) (model.Recipe, error) {
	if err := draft.validate(); err != nil {
		return model.Recipe{}, err
	}
	tok, err := c.authToken()
	if err != nil {
		return model.Recipe{}, err
	}

	req := map[string]any{
		"auth_token":         tok,
		"recipe_name":        draft.Name,
		"recipe_description": draft.Description,
		"image_url":          draft.ImageURL,
		"ingredients":        draft.Ingredients,
		"directions":         draft.Directions,
	}
	var resp struct {
		Recipe model.Recipe `json:"recipe"`
	}
	if err := c.call(ctx, http.MethodPost, "/createRecipe", req, &resp); err != nil {
		return model.Recipe{}, err
	}
	return resp.Recipe, nil
}

// RecipeEdit holds the full replacement fields for an existing recipe.
// Ordered lines carry explicit positions.
type RecipeEdit struct {
	Name        string
	Description string
	ImageURL    string
	Ingredients []model.Line
	Directions  []model.Line
}

// EditRecipe replaces the recipe's fields and returns the canonical copy.
func (c *Client) EditRecipe(ctx context.Context, id string, edit RecipeEdit) (model.Recipe, error) {
	if edit.Name == "" {
		return model.Recipe{}, &ValidationError{Field: "recipe name", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return model.Recipe{}, err
	}

	req := map[string]any{
		"auth_token":         tok,
		"recipe_id":          id,
		"recipe_name":        edit.Name,
		"recipe_description": edit.Description,
		"image_url":          edit.ImageURL,
		"ingredients":        edit.Ingredients,
		"directions":         edit.Directions,
	}
	var resp struct {
		Recipe model.Recipe `json:"recipe"`
	}
	if err := c.call(ctx, http.MethodPost, "/editRecipe", req, &resp); err != nil {
		return model.Recipe{}, err
	}
	return resp.Recipe, nil
}

// DeleteRecipe removes the recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "recipe_id": id}
	return c.call(ctx, http.MethodDelete, "/deleteRecipe", req, nil)
}
