// Package store holds the per-screen authoritative copies of remote state
// and reconciles bus events against them. The bus is the only channel that
// mutates a holder from outside; screens never touch each other's copies.
package store

import (
	"sync"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/model"
)

// RecipeList is one screen's copy of the recipe collection.
type RecipeList struct {
	mu      sync.Mutex
	recipes []model.Recipe
	refetch func() // invoked on a refresh event; may be nil
}

// NewRecipeList creates a holder. refetch is called when a refresh event
// asks holders to re-pull everything from the server; pass nil to ignore.
func NewRecipeList(refetch func()) *RecipeList {
	return &RecipeList{refetch: refetch}
}

// Replace installs the result of an initial or refreshed fetch.
func (l *RecipeList) Replace(recipes []model.Recipe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recipes = append([]model.Recipe(nil), recipes...)
}

// Snapshot returns a copy of the held list.
func (l *RecipeList) Snapshot() []model.Recipe {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Recipe(nil), l.recipes...)
}

// Apply reconciles one recipe event: an upsert merges by id or prepends,
// a delete filters by id, a refresh delegates to the refetch hook.
func (l *RecipeList) Apply(e events.RecipeEvent) {
	switch e.Kind {
	case events.RecipeUpserted:
		l.upsert(*e.Recipe)
	case events.RecipeDeleted:
		l.remove(e.RecipeID)
	case events.RecipeRefresh:
		if l.refetch != nil {
			l.refetch()
		}
	}
}

func (l *RecipeList) upsert(r model.Recipe) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.recipes {
		if l.recipes[i].ID == r.ID {
			l.recipes[i] = r
			return
		}
	}
	l.recipes = append([]model.Recipe{r}, l.recipes...)
}

func (l *RecipeList) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.recipes[:0]
	for _, r := range l.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.recipes = kept
}

// Clear drops everything held (sign-out).
func (l *RecipeList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recipes = nil
}

// Attach subscribes the holder to the recipe bus and the clear signal.
// The returned detach function unsubscribes from both; it is idempotent.
func (l *RecipeList) Attach(bus *events.Bus[events.RecipeEvent], cleared *events.Signal) (detach func()) {
	un1 := bus.Subscribe(l.Apply)
	un2 := cleared.Subscribe(l.Clear)
	return func() {
		un1()
		un2()
	}
}

// BookList is one screen's copy of the book collection.
type BookList struct {
	mu    sync.Mutex
	books []model.Book
}

// NewBookList creates an empty holder.
func NewBookList() *BookList {
	return &BookList{}
}

// Replace installs a fetched book list.
func (l *BookList) Replace(books []model.Book) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books = append([]model.Book(nil), books...)
}

// Snapshot returns a copy of the held list.
func (l *BookList) Snapshot() []model.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Book(nil), l.books...)
}

// Apply reconciles one book event: create prepends, update merges by id,
// delete filters by id.
func (l *BookList) Apply(e events.BookEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch e.Kind {
	case events.BookCreated:
		l.books = append([]model.Book{*e.Book}, l.books...)
	case events.BookUpdated:
		for i := range l.books {
			if l.books[i].ID == e.Book.ID {
				l.books[i] = *e.Book
				return
			}
		}
		l.books = append([]model.Book{*e.Book}, l.books...)
	case events.BookDeleted:
		kept := l.books[:0]
		for _, b := range l.books {
			if b.ID != e.BookID {
				kept = append(kept, b)
			}
		}
		l.books = kept
	}
}

// Attach subscribes the holder to the book bus.
func (l *BookList) Attach(bus *events.Bus[events.BookEvent]) (detach func()) {
	return bus.Subscribe(l.Apply)
}

// ProfileHolder holds the current profile. Every bus emission is a full
// replacement, never a delta.
type ProfileHolder struct {
	mu      sync.Mutex
	profile model.UserProfile
}

// NewProfileHolder creates a holder seeded with the initial fetch.
func NewProfileHolder(initial model.UserProfile) *ProfileHolder {
	return &ProfileHolder{profile: initial}
}

// Current returns the held profile.
func (h *ProfileHolder) Current() model.UserProfile {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.profile
}

// Apply replaces the held profile.
func (h *ProfileHolder) Apply(p model.UserProfile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.profile = p
}

// Attach subscribes the holder to the profile bus.
func (h *ProfileHolder) Attach(bus *events.Bus[model.UserProfile]) (detach func()) {
	return bus.Subscribe(h.Apply)
}
