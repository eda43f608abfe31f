package stubserver

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/gateway"
	"github.com/serenidad/mealpack/internal/stream"
	"github.com/serenidad/mealpack/internal/token"
)

func newTestClient(t *testing.T) (*gateway.Client, *Server) {
	t.Helper()

	stub := New(zerolog.Nop())
	stub.SeedAccount("test-token", "Alice", "alice@example.com")

	srv := httptest.NewServer(stub.Handler(nil))
	t.Cleanup(srv.Close)

	client := gateway.NewClient(
		token.NewStaticStore("test-token"),
		zerolog.Nop(),
		gateway.WithBaseURL(srv.URL),
	)
	return client, stub
}

func TestRecipeLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateRecipe(ctx, gateway.RecipeDraft{
		Name:        "Toast",
		Description: "Bread, but better.",
		Ingredients: []string{"bread"},
		Directions:  []string{"toast it"},
	})
	if err != nil {
		t.Fatalf("CreateRecipe() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateRecipe() returned empty id")
	}
	if created.Author.Name != "Alice" {
		t.Errorf("author = %q, want Alice", created.Author.Name)
	}

	state, err := client.FetchUserState(ctx)
	if err != nil {
		t.Fatalf("FetchUserState() error = %v", err)
	}
	if len(state.Recipes) != 1 || state.Recipes[0].ID != created.ID {
		t.Fatalf("FetchUserState() recipes = %+v, want the created recipe", state.Recipes)
	}

	if err := client.DeleteRecipe(ctx, created.ID); err != nil {
		t.Fatalf("DeleteRecipe() error = %v", err)
	}
	state, err = client.FetchUserState(ctx)
	if err != nil {
		t.Fatalf("FetchUserState() error = %v", err)
	}
	if len(state.Recipes) != 0 {
		t.Errorf("recipes after delete = %d, want 0", len(state.Recipes))
	}
}

func TestBookPages(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	recipe, err := client.CreateRecipe(ctx, gateway.RecipeDraft{
		Name:        "Soup",
		Ingredients: []string{"stock"},
		Directions:  []string{"simmer"},
	})
	if err != nil {
		t.Fatalf("CreateRecipe() error = %v", err)
	}
	book, err := client.CreateBook(ctx, "Weeknight", "")
	if err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}

	if err := client.AddBookPage(ctx, book.ID, recipe.ID); err != nil {
		t.Fatalf("AddBookPage() error = %v", err)
	}
	// Adding twice keeps a single page.
	if err := client.AddBookPage(ctx, book.ID, recipe.ID); err != nil {
		t.Fatalf("AddBookPage() second call error = %v", err)
	}

	fresh, err := client.RefreshBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RefreshBook() error = %v", err)
	}
	if len(fresh.Pages) != 1 || fresh.Pages[0].Recipe.ID != recipe.ID {
		t.Fatalf("pages = %+v, want one page for %s", fresh.Pages, recipe.ID)
	}

	if err := client.RemoveBookPage(ctx, book.ID, recipe.ID); err != nil {
		t.Fatalf("RemoveBookPage() error = %v", err)
	}
	fresh, err = client.RefreshBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RefreshBook() error = %v", err)
	}
	if len(fresh.Pages) != 0 {
		t.Errorf("pages after remove = %d, want 0", len(fresh.Pages))
	}

	if err := client.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook() error = %v", err)
	}
	if _, err := client.RefreshBook(ctx, book.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("RefreshBook() after delete error = %v, want ErrNotFound", err)
	}
}

func TestShareCodeClaim(t *testing.T) {
	client, stub := newTestClient(t)
	ctx := context.Background()

	recipe, err := client.CreateRecipe(ctx, gateway.RecipeDraft{
		Name:        "Secret Sauce",
		Ingredients: []string{"tomatoes"},
		Directions:  []string{"blend"},
	})
	if err != nil {
		t.Fatalf("CreateRecipe() error = %v", err)
	}
	code, err := client.CreateShareCode(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("CreateShareCode() error = %v", err)
	}
	if code == "" {
		t.Fatal("CreateShareCode() returned empty code")
	}

	// Claim from a second account.
	stub.SeedAccount("other-token", "Bob", "bob@example.com")
	srv := httptest.NewServer(stub.Handler(nil))
	defer srv.Close()
	other := gateway.NewClient(token.NewStaticStore("other-token"), zerolog.Nop(), gateway.WithBaseURL(srv.URL))

	res, err := other.ClaimShareCode(ctx, code)
	if err != nil {
		t.Fatalf("ClaimShareCode() error = %v", err)
	}
	if res.Recipe.Name != "Secret Sauce" {
		t.Errorf("claimed name = %q, want Secret Sauce", res.Recipe.Name)
	}
	if res.Recipe.ID == recipe.ID {
		t.Error("claimed recipe kept the source id, want a fresh copy")
	}
	if res.SharedBy == nil || res.SharedBy.Name != "Alice" {
		t.Errorf("shared_by = %+v, want Alice", res.SharedBy)
	}
}

func TestOTPFlow(t *testing.T) {
	stub := New(zerolog.Nop())
	srv := httptest.NewServer(stub.Handler(nil))
	defer srv.Close()

	store := token.NewStaticStore("")
	client := gateway.NewClient(store, zerolog.Nop(), gateway.WithBaseURL(srv.URL))
	ctx := context.Background()

	if err := client.CreateOTP(ctx, "new@example.com"); err != nil {
		t.Fatalf("CreateOTP() error = %v", err)
	}
	if _, err := client.VerifyOTP(ctx, "new@example.com", "999999"); err == nil {
		t.Fatal("VerifyOTP() with wrong code succeeded, want error")
	}
	if err := client.CreateOTP(ctx, "new@example.com"); err != nil {
		t.Fatalf("CreateOTP() error = %v", err)
	}
	tok, err := client.VerifyOTP(ctx, "new@example.com", "000000")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if tok == "" {
		t.Fatal("VerifyOTP() returned empty token")
	}

	if err := store.SetToken(tok); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if _, err := client.FetchUserState(ctx); err != nil {
		t.Fatalf("FetchUserState() with fresh token error = %v", err)
	}
}

func TestGenerationStream(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	body, err := client.GenerateRecipe(ctx, "dish.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("GenerateRecipe() error = %v", err)
	}
	defer body.Close()

	sc := stream.NewScanner(body, zerolog.Nop())
	var statuses []string
	for {
		frame, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		statuses = append(statuses, frame.Status)
	}

	want := []string{
		"processing",
		"name_generated",
		"description_generated",
		"ingredients_generated",
		"directions_generated",
		"completed",
	}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
}

func TestUploadProfilePicture(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	url, err := client.UploadFile(ctx, "me.png", strings.NewReader("png-bytes"), nil)
	if err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if !strings.HasSuffix(url, "/me.png") {
		t.Errorf("url = %q, want filename suffix", url)
	}

	canonical, err := client.UpdateProfilePicture(ctx, url)
	if err != nil {
		t.Fatalf("UpdateProfilePicture() error = %v", err)
	}
	if canonical != url {
		t.Errorf("canonical url = %q, want %q", canonical, url)
	}
}
