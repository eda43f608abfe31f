package gateway

import (
	"context"
	"net/http"

	"github.com/serenidad/mealpack/internal/model"
)

// CreateBook creates an empty book and returns the server's copy.
func (c *Client) CreateBook(ctx context.Context, name, imageURL string) (model.Book, error) {
	if name == "" {
		return model.Book{}, &ValidationError{Field: "book name", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return model.Book{}, err
	}

	req := map[string]string{"auth_token": tok, "book_name": name, "image_url": imageURL}
	var resp struct {
		Book model.Book `json:"book"`
	}
	if err := c.call(ctx, http.MethodPost, "/createBook", req, &resp); err != nil {
		return model.Book{}, err
	}
	return resp.Book, nil
}

// GetBooks lists every book visible to the caller.
func (c *Client) GetBooks(ctx context.Context) ([]model.Book, error) {
	tok, err := c.authToken()
	if err != nil {
		return nil, err
	}

	req := map[string]string{"auth_token": tok}
	var resp struct {
		Books []model.Book `json:"books"`
	}
	if err := c.call(ctx, http.MethodPost, "/getBooks", req, &resp); err != nil {
		return nil, err
	}
	return resp.Books, nil
}

// RefreshBook re-fetches the canonical state of one book. The contract has
// no single-book endpoint, so this lists and selects. Returns ErrNotFound
// when the book no longer exists.
func (c *Client) RefreshBook(ctx context.Context, id string) (model.Book, error) {
	books, err := c.GetBooks(ctx)
	if err != nil {
		return model.Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Book{}, ErrNotFound
}

// DeleteBook removes the book (not the recipes it pages).
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "book_id": id}
	return c.call(ctx, http.MethodDelete, "/deleteBook", req, nil)
}

// ShareBook grants the book to the user with the given email.
func (c *Client) ShareBook(ctx context.Context, id, email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "book_id": id, "email": email}
	return c.call(ctx, http.MethodPost, "/shareBook", req, nil)
}

// AddBookPage inserts a recipe into the book.
func (c *Client) AddBookPage(ctx context.Context, bookID, recipeID string) error {
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "book_id": bookID, "recipe_id": recipeID}
	return c.call(ctx, http.MethodPost, "/addBookPage", req, nil)
}

// RemoveBookPage removes a recipe from the book.
func (c *Client) RemoveBookPage(ctx context.Context, bookID, recipeID string) error {
	tok, err := c.authToken()
	if err != nil {
		return err
	}
	req := map[string]string{"auth_token": tok, "book_id": bookID, "recipe_id": recipeID}
	return c.call(ctx, http.MethodPost, "/removeBookPage", req, nil)
}
