package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/token"
)

func testClient(t *testing.T, tok string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(token.NewStaticStore(tok), zerolog.Nop(), WithBaseURL(srv.URL))
}

func TestUnauthenticatedShortCircuits(t *testing.T) {
	// The handler must never be reached without a token.
	client := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call to %s", r.URL.Path)
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"fetch user state", func() error { _, err := client.FetchUserState(ctx); return err }},
		{"delete recipe", func() error { return client.DeleteRecipe(ctx, "1") }},
		{"get books", func() error { _, err := client.GetBooks(ctx); return err }},
		{"add book page", func() error { return client.AddBookPage(ctx, "b", "r") }},
		{"create share code", func() error { _, err := client.CreateShareCode(ctx, "1"); return err }},
		{"claim share code", func() error { _, err := client.ClaimShareCode(ctx, "code"); return err }},
		{"update name", func() error { return client.UpdateName(ctx, "Alice") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestFetchUserState(t *testing.T) {
	client := testClient(t, "tok-1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth" || r.Method != http.MethodPost {
			t.Errorf("got %s %s, want POST /auth", r.Method, r.URL.Path)
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req["auth_token"] != "tok-1" {
			t.Errorf("auth_token = %q, want %q", req["auth_token"], "tok-1")
		}

		io.WriteString(w, `{
			"recipes": [{"id": "1", "name": "Soup"}, {"id": "2", "name": "Stew"}],
			"user_profile": {"id": "u1", "name": "Alice", "email": "a@example.com"}
		}`)
	})

	state, err := client.FetchUserState(context.Background())
	if err != nil {
		t.Fatalf("FetchUserState: %v", err)
	}
	if len(state.Recipes) != 2 {
		t.Fatalf("got %d recipes, want 2", len(state.Recipes))
	}
	if state.Recipes[0].Name != "Soup" {
		t.Errorf("recipes[0].Name = %q, want %q", state.Recipes[0].Name, "Soup")
	}
	if state.Profile.Name != "Alice" {
		t.Errorf("profile.Name = %q, want %q", state.Profile.Name, "Alice")
	}
}

func TestRemoteErrorCarriesServerMessage(t *testing.T) {
	client := testClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error": "Recipe already shared with this user"}`)
	})

	err := client.ShareRecipe(context.Background(), "1", "b@example.com")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if remote.Status != http.StatusConflict {
		t.Errorf("Status = %d, want %d", remote.Status, http.StatusConflict)
	}
	if remote.Message != "Recipe already shared with this user" {
		t.Errorf("Message = %q, want server message", remote.Message)
	}
}

func TestDecodeErrorOnMalformedSuccess(t *testing.T) {
	client := testClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json at all`)
	})

	_, err := client.FetchUserState(context.Background())

	var decode *DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	client := testClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		t.Error("validation failure must not reach the network")
	})

	tests := []struct {
		name  string
		draft RecipeDraft
	}{
		{"empty name", RecipeDraft{Ingredients: []string{"x"}, Directions: []string{"y"}}},
		{"no ingredients", RecipeDraft{Name: "Soup", Directions: []string{"y"}}},
		{"no directions", RecipeDraft{Name: "Soup", Ingredients: []string{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateRecipe(context.Background(), tt.draft)
			var v *ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}

func TestDeleteRecipeUsesDelete(t *testing.T) {
	var gotMethod string
	client := testClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		io.WriteString(w, `{}`)
	})

	if err := client.DeleteRecipe(context.Background(), "1"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
}

func TestRefreshBookSelectsByID(t *testing.T) {
	client := testClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"books": [
			{"id": "b1", "name": "Weeknight"},
			{"id": "b2", "name": "Desserts"}
		]}`)
	})

	book, err := client.RefreshBook(context.Background(), "b2")
	if err != nil {
		t.Fatalf("RefreshBook: %v", err)
	}
	if book.Name != "Desserts" {
		t.Errorf("book.Name = %q, want %q", book.Name, "Desserts")
	}

	if _, err := client.RefreshBook(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RefreshBook(missing) = %v, want ErrNotFound", err)
	}
}

func TestVerifyOTPNeedsNoToken(t *testing.T) {
	client := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verifyOTP" {
			t.Errorf("path = %s, want /verifyOTP", r.URL.Path)
		}
		io.WriteString(w, `{"auth_token": "fresh-token"}`)
	})

	tok, err := client.VerifyOTP(context.Background(), "a@example.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if tok != "fresh-token" {
		t.Errorf("token = %q, want %q", tok, "fresh-token")
	}
}

func TestUploadFileReportsProgress(t *testing.T) {
	client := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "dish.jpg" {
			t.Errorf("filename = %q, want dish.jpg", hdr.Filename)
		}
		io.WriteString(w, `{"fileUrl": "https://cdn.example.com/dish.jpg"}`)
	})

	var progress []float64
	url, err := client.UploadFile(context.Background(), "dish.jpg",
		strings.NewReader(strings.Repeat("x", 1024)),
		func(f float64) { progress = append(progress, f) })
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if url != "https://cdn.example.com/dish.jpg" {
		t.Errorf("url = %q", url)
	}

	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	last := progress[len(progress)-1]
	if last != 1.0 {
		t.Errorf("final progress = %v, want 1.0", last)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress went backwards at %d: %v", i, progress)
		}
	}
}

func TestGenerateRecipeStreamError(t *testing.T) {
	client := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": "model unavailable"}`)
	})

	_, err := client.GenerateRecipe(context.Background(), "dish.jpg", strings.NewReader("img"))

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if remote.Status != http.StatusBadGateway || remote.Message != "model unavailable" {
		t.Errorf("remote = %+v", remote)
	}
}
