package stubserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/serenidad/mealpack/internal/model"
)

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		Name      string `json:"book_name"`
		ImageURL  string `json:"image_url"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "book name is required")
		return
	}

	book := model.Book{
		ID:       uuid.NewString(),
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Author: model.Author{
			ID:             acct.profile.ID,
			Name:           acct.profile.Name,
			ProfilePicture: acct.profile.ProfilePictureURL,
		},
	}
	acct.books = append(acct.books, book)
	writeJSON(w, http.StatusOK, map[string]any{"book": book})
}

func (s *Server) handleGetBooks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	books := acct.books
	if books == nil {
		books = []model.Book{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		BookID    string `json:"book_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}

	kept := acct.books[:0]
	for _, b := range acct.books {
		if b.ID != req.BookID {
			kept = append(kept, b)
		}
	}
	acct.books = kept
	writeJSON(w, http.StatusOK, map[string]any{})
}

// findBook must be called with s.mu held.
func findBook(acct *account, id string) *model.Book {
	for i := range acct.books {
		if acct.books[i].ID == id {
			return &acct.books[i]
		}
	}
	return nil
}

func (s *Server) handleShareBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		BookID    string `json:"book_id"`
		Email     string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	if findBook(acct, req.BookID) == nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	s.log.Info().Str("book", req.BookID).Str("email", req.Email).Msg("stub book share")
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleAddBookPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		BookID    string `json:"book_id"`
		RecipeID  string `json:"recipe_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	book := findBook(acct, req.BookID)
	if book == nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	for _, p := range book.Pages {
		if p.Recipe.ID == req.RecipeID {
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	for _, rec := range acct.recipes {
		if rec.ID == req.RecipeID {
			book.Pages = append(book.Pages, model.Page{ID: uuid.NewString(), Recipe: rec})
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeError(w, http.StatusNotFound, "recipe not found")
}

func (s *Server) handleRemoveBookPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		BookID    string `json:"book_id"`
		RecipeID  string `json:"recipe_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	book := findBook(acct, req.BookID)
	if book == nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	kept := book.Pages[:0]
	for _, p := range book.Pages {
		if p.Recipe.ID != req.RecipeID {
			kept = append(kept, p)
		}
	}
	book.Pages = kept
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleCreateShareCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		RecipeID  string `json:"recipe_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}

	for _, rec := range acct.recipes {
		if rec.ID == req.RecipeID {
			code := uuid.NewString()[:8]
			s.shareCodes[code] = rec
			writeJSON(w, http.StatusOK, map[string]string{"share_code": code})
			return
		}
	}
	writeError(w, http.StatusNotFound, "recipe not found")
}

func (s *Server) handleClaimShareCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		ShareCode string `json:"share_code"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	src, ok := s.shareCodes[req.ShareCode]
	if !ok {
		writeError(w, http.StatusNotFound, "share code not found")
		return
	}

	claimed := src
	claimed.ID = uuid.NewString()
	claimed.Author = model.Author{
		ID:             acct.profile.ID,
		Name:           acct.profile.Name,
		ProfilePicture: acct.profile.ProfilePictureURL,
	}
	acct.recipes = append(acct.recipes, claimed)

	writeJSON(w, http.StatusOK, map[string]any{
		"recipe":    claimed,
		"shared_by": src.Author,
	})
}

func (s *Server) handleShareRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		RecipeID  string `json:"recipe_id"`
		Email     string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.authed(w, req.AuthToken)
	if acct == nil {
		return
	}
	for i := range acct.recipes {
		if acct.recipes[i].ID == req.RecipeID {
			acct.recipes[i].Shares = append(acct.recipes[i].Shares, model.Share{Email: req.Email})
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeError(w, http.StatusNotFound, "recipe not found")
}
