package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/model"
)

func TestPageDiff(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		selected   []string
		wantAdd    []string
		wantRemove []string
	}{
		{
			name:       "add and remove",
			current:    []string{"1", "2", "3"},
			selected:   []string{"2", "3", "4"},
			wantAdd:    []string{"4"},
			wantRemove: []string{"1"},
		},
		{
			name:     "no changes",
			current:  []string{"1", "2"},
			selected: []string{"2", "1"},
		},
		{
			name:    "all new",
			current: nil, selected: []string{"a", "b"},
			wantAdd: []string{"a", "b"},
		},
		{
			name:       "all removed",
			current:    []string{"a", "b"},
			wantRemove: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAdd, gotRemove := PageDiff(tt.current, tt.selected)
			if !equalStrings(gotAdd, tt.wantAdd) {
				t.Errorf("toAdd = %v, want %v", gotAdd, tt.wantAdd)
			}
			if !equalStrings(gotRemove, tt.wantRemove) {
				t.Errorf("toRemove = %v, want %v", gotRemove, tt.wantRemove)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type fakeBookAPI struct {
	mu        sync.Mutex
	added     []string
	removed   []string
	addErr    map[string]error
	canonical model.Book
	refreshed int
}

func (f *fakeBookAPI) AddBookPage(ctx context.Context, bookID, recipeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addErr[recipeID]; err != nil {
		return err
	}
	f.added = append(f.added, recipeID)
	return nil
}

func (f *fakeBookAPI) RemoveBookPage(ctx context.Context, bookID, recipeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, recipeID)
	return nil
}

func (f *fakeBookAPI) RefreshBook(ctx context.Context, id string) (model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
	return f.canonical, nil
}

func bookWithRecipes(ids ...string) model.Book {
	b := model.Book{ID: "b1", Name: "Weeknight"}
	for _, id := range ids {
		b.Pages = append(b.Pages, model.Page{ID: "p" + id, Recipe: model.Recipe{ID: id}})
	}
	return b
}

func TestBookPagesApply(t *testing.T) {
	api := &fakeBookAPI{canonical: bookWithRecipes("2", "3", "4")}
	bus := events.NewBus[events.BookEvent]("books", zerolog.Nop())

	var updates []events.BookEvent
	bus.Subscribe(func(e events.BookEvent) { updates = append(updates, e) })

	pages := NewBookPages(api, bus, zerolog.Nop())
	fresh, err := pages.Apply(context.Background(), bookWithRecipes("1", "2", "3"), []string{"2", "3", "4"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !equalStrings(api.added, []string{"4"}) {
		t.Errorf("added = %v, want [4]", api.added)
	}
	if !equalStrings(api.removed, []string{"1"}) {
		t.Errorf("removed = %v, want [1]", api.removed)
	}
	if api.refreshed != 1 {
		t.Errorf("refreshed %d times, want 1", api.refreshed)
	}

	if len(fresh.Pages) != 3 {
		t.Errorf("canonical book has %d pages, want 3", len(fresh.Pages))
	}

	if len(updates) != 1 || updates[0].Kind != events.BookUpdated {
		t.Fatalf("bus updates = %v, want one BookUpdated", updates)
	}
	if updates[0].Book.ID != "b1" {
		t.Errorf("update book id = %q, want b1", updates[0].Book.ID)
	}
}

func TestBookPagesApplyPartialFailureStillReconciles(t *testing.T) {
	api := &fakeBookAPI{
		addErr:    map[string]error{"4": errors.New("add rejected")},
		canonical: bookWithRecipes("2", "3", "5"),
	}
	bus := events.NewBus[events.BookEvent]("books", zerolog.Nop())

	var updates []events.BookEvent
	bus.Subscribe(func(e events.BookEvent) { updates = append(updates, e) })

	pages := NewBookPages(api, bus, zerolog.Nop())
	fresh, err := pages.Apply(context.Background(), bookWithRecipes("1", "2", "3"), []string{"2", "3", "4", "5"})

	// The error surfaces, but the canonical re-fetch and emission happened.
	if err == nil {
		t.Fatal("Apply returned nil, want partial-failure error")
	}
	if api.refreshed != 1 {
		t.Errorf("refreshed %d times, want 1 even on partial failure", api.refreshed)
	}
	if len(updates) != 1 {
		t.Fatalf("bus updates = %d, want 1", len(updates))
	}

	// The result is what the server reported, not the pre-computed diff.
	ids := fresh.RecipeIDs()
	if ids["4"] {
		t.Error("result contains recipe 4, but its add failed server-side")
	}
	if !ids["5"] {
		t.Error("result missing recipe 5 reported by the server")
	}
}
