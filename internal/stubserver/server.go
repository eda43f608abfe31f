// Package stubserver is an in-memory MealPack API used for offline
// development and integration tests. It implements the full client
// contract, including the event-stream generation endpoints.
package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/model"
)

// account is one authenticated user's state.
type account struct {
	profile model.UserProfile
	recipes []model.Recipe
	books   []model.Book
}

// Server holds all stub state behind one lock. Zero-value maps are not
// usable; construct with New.
type Server struct {
	log zerolog.Logger

	// FrameDelay spaces out generation frames so clients exercise their
	// incremental paths. Zero means no delay (tests).
	FrameDelay time.Duration

	mu         sync.Mutex
	accounts   map[string]*account // auth token -> account
	pendingOTP map[string]string   // email -> otp
	shareCodes map[string]model.Recipe
}

// New creates an empty stub server.
func New(log zerolog.Logger) *Server {
	return &Server{
		log:        log,
		accounts:   make(map[string]*account),
		pendingOTP: make(map[string]string),
		shareCodes: make(map[string]model.Recipe),
	}
}

// SeedAccount registers an account under the given token and returns its
// profile. Tests use this to skip the OTP flow.
func (s *Server) SeedAccount(token, name, email string) model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &account{profile: model.UserProfile{ID: uuid.NewString(), Name: name, Email: email}}
	s.accounts[token] = acct
	return acct.profile
}

// Handler returns the routed handler. When accessLog is non-nil each
// request is logged in combined log format.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auth", s.handleAuth).Methods(http.MethodPost)
	r.HandleFunc("/createRecipe", s.handleCreateRecipe).Methods(http.MethodPost)
	r.HandleFunc("/editRecipe", s.handleEditRecipe).Methods(http.MethodPost)
	r.HandleFunc("/deleteRecipe", s.handleDeleteRecipe).Methods(http.MethodDelete)
	r.HandleFunc("/generateRecipe", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/regenerateRecipe", s.handleRegenerate).Methods(http.MethodPost)
	r.HandleFunc("/createBook", s.handleCreateBook).Methods(http.MethodPost)
	r.HandleFunc("/getBooks", s.handleGetBooks).Methods(http.MethodPost)
	r.HandleFunc("/deleteBook", s.handleDeleteBook).Methods(http.MethodDelete)
	r.HandleFunc("/shareBook", s.handleShareBook).Methods(http.MethodPost)
	r.HandleFunc("/addBookPage", s.handleAddBookPage).Methods(http.MethodPost)
	r.HandleFunc("/removeBookPage", s.handleRemoveBookPage).Methods(http.MethodPost)
	r.HandleFunc("/createShareCode", s.handleCreateShareCode).Methods(http.MethodPost)
	r.HandleFunc("/claimShareCode", s.handleClaimShareCode).Methods(http.MethodPost)
	r.HandleFunc("/shareRecipe", s.handleShareRecipe).Methods(http.MethodPost)
	r.HandleFunc("/updateName", s.handleUpdateName).Methods(http.MethodPost)
	r.HandleFunc("/updateProfilePicture", s.handleUpdatePicture).Methods(http.MethodPost)
	r.HandleFunc("/createOTP", s.handleCreateOTP).Methods(http.MethodPost)
	r.HandleFunc("/verifyOTP", s.handleVerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/uploadFile", s.handleUpload).Methods(http.MethodPost)

	if accessLog != nil {
		return handlers.CombinedLoggingHandler(accessLog, r)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads the JSON request body into req.
func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// authed resolves the account for the request's auth token.
func (s *Server) authed(w http.ResponseWriter, token string) *account {
	acct := s.accounts[token]
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "invalid auth token")
		return nil
	}
	return acct
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]any{
		"recipes":      acct.recipes,
		"user_profile": acct.profile,
	})
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken   string   `json:"auth_token"`
		Name        string   `json:"recipe_name"`
		Description string   `json:"recipe_description"`
		ImageURL    string   `json:"image_url"`
		Ingredients []string `json:"ingredients"`
		Directions  []string `json:"directions"`
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
		writeError(w, http.StatusBadRequest, "recipe name is required")
		return
	}

	recipe := model.Recipe{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Ingredients: model.Lines(req.Ingredients),
		Directions:  model.Lines(req.Directions),
		Author: model.Author{
			ID:             acct.profile.ID,
			Name:           acct.profile.Name,
			ProfilePicture: acct.profile.ProfilePictureURL,
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	acct.recipes = append(acct.recipes, recipe)

	writeJSON(w, http.StatusOK, map[string]any{"recipe": recipe})
}

func (s *Server) handleEditRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken   string       `json:"auth_token"`
		RecipeID    string       `json:"recipe_id"`
		Name        string       `json:"recipe_name"`
		Description string       `json:"recipe_description"`
		ImageURL    string       `json:"image_url"`
		Ingredients []model.Line `json:"ingredients"`
		Directions  []model.Line `json:"directions"`
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
			acct.recipes[i].Name = req.Name
			acct.recipes[i].Description = req.Description
			acct.recipes[i].ImageURL = req.ImageURL
			acct.recipes[i].Ingredients = req.Ingredients
			acct.recipes[i].Directions = req.Directions
			writeJSON(w, http.StatusOK, map[string]any{"recipe": acct.recipes[i]})
			return
		}
	}
	writeError(w, http.StatusNotFound, "recipe not found")
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
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

	kept := acct.recipes[:0]
	for _, rec := range acct.recipes {
		if rec.ID != req.RecipeID {
			kept = append(kept, rec)
		}
	}
	acct.recipes = kept
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken string `json:"auth_token"`
		Name      string `json:"name"`
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
	acct.profile.Name = req.Name
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleUpdatePicture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthToken         string `json:"auth_token"`
		ProfilePictureURL string `json:"profile_picture_url"`
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
	acct.profile.ProfilePictureURL = req.ProfilePictureURL
	writeJSON(w, http.StatusOK, map[string]string{
		"profile_picture_url": acct.profile.ProfilePictureURL,
	})
}

func (s *Server) handleCreateOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The stub never sends mail; the fixed code is logged instead.
	s.pendingOTP[req.Email] = "000000"
	s.log.Info().Str("email", req.Email).Str("otp", "000000").Msg("stub otp issued")
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.pendingOTP[req.Email]
	if !ok || req.OTP != want {
		writeError(w, http.StatusUnauthorized, "invalid OTP")
		return
	}
	delete(s.pendingOTP, req.Email)

	tok := uuid.NewString()
	s.accounts[tok] = &account{profile: model.UserProfile{
		ID:    uuid.NewString(),
		Name:  req.Email,
		Email: req.Email,
	}}
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": tok})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	_, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part missing")
		return
	}

	url := fmt.Sprintf("https://files.stub.local/%s/%s", uuid.NewString(), hdr.Filename)
	writeJSON(w, http.StatusOK, map[string]string{"fileUrl": url})
}
