package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// GenerationRecipe is the recipe shape exchanged with the generation
// endpoints: flattened field names, plain string lines.
type GenerationRecipe struct {
	Name        string   `json:"recipe_name"`
	Description string   `json:"recipe_description"`
	Ingredients []string `json:"ingredients"`
	Directions  []string `json:"directions"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// GenerateRecipe posts the source image and returns the raw event-stream
// response body. Frames are newline-delimited "data: {...}\n\n" records;
// the caller owns parsing and must close the body. Cancelling ctx aborts
// the stream.
func (c *Client) GenerateRecipe(ctx context.Context, filename string, image io.Reader) (io.ReadCloser, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("gateway: create multipart: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("gateway: read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("gateway: finish multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generateRecipe", &buf)
	if err != nil {
		return nil, fmt.Errorf("gateway: create generate request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.openStream(req, "/generateRecipe")
}

// RegenerateRecipe posts the current (possibly user-edited) recipe plus a
// free-text instruction and returns the raw event-stream body, which uses
// the *_regenerated frame tags.
func (c *Client) RegenerateRecipe(ctx context.Context, recipe GenerationRecipe, prompt string) (io.ReadCloser, error) {
	payload := map[string]any{"recipe": recipe, "prompt": prompt}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal regenerate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/regenerateRecipe", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gateway: create regenerate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.openStream(req, "/regenerateRecipe")
}

// openStream issues the request and hands back the body for incremental
// consumption. Non-2xx responses are drained into a *RemoteError.
func (c *Client) openStream(req *http.Request, endpoint string) (io.ReadCloser, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &RemoteError{Status: resp.StatusCode, Message: serverMessage(body)}
	}

	c.log.Debug().Str("endpoint", endpoint).Msg("generation stream open")
	return resp.Body, nil
}
