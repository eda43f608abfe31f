package events

import (
	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/model"
)

// RecipeEventKind tags the variants of a RecipeEvent.
type RecipeEventKind int

const (
	// RecipeUpserted carries a full recipe that was created or updated.
	RecipeUpserted RecipeEventKind = iota
	// RecipeDeleted carries only the id of a removed recipe.
	RecipeDeleted
	// RecipeRefresh asks holders to re-fetch everything from the server.
	RecipeRefresh
)

// String returns a human-readable kind name.
func (k RecipeEventKind) String() string {
	switch k {
	case RecipeUpserted:
		return "upserted"
	case RecipeDeleted:
		return "deleted"
	case RecipeRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// RecipeEvent is the payload of the recipe bus. Exactly one variant is
// populated, selected by Kind.
type RecipeEvent struct {
	Kind     RecipeEventKind
	RecipeID string        // set for RecipeDeleted
	Recipe   *model.Recipe // set for RecipeUpserted, always the full recipe
}

// RecipeUpsert builds a create/update event carrying the full recipe.
func RecipeUpsert(r model.Recipe) RecipeEvent {
	return RecipeEvent{Kind: RecipeUpserted, Recipe: &r}
}

// RecipeDelete builds a deletion event for the given recipe id.
func RecipeDelete(id string) RecipeEvent {
	return RecipeEvent{Kind: RecipeDeleted, RecipeID: id}
}

// RecipeRefreshAll builds a re-fetch-everything event.
func RecipeRefreshAll() RecipeEvent {
	return RecipeEvent{Kind: RecipeRefresh}
}

// BookEventKind tags the variants of a BookEvent.
type BookEventKind int

const (
	BookCreated BookEventKind = iota
	BookUpdated
	BookDeleted
)

// String returns a human-readable kind name.
func (k BookEventKind) String() string {
	switch k {
	case BookCreated:
		return "created"
	case BookUpdated:
		return "updated"
	case BookDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// BookEvent is the payload of the book bus.
type BookEvent struct {
	Kind   BookEventKind
	BookID string      // set for BookDeleted
	Book   *model.Book // set for BookCreated and BookUpdated
}

// BookCreate builds a creation event carrying the new book.
func BookCreate(b model.Book) BookEvent {
	return BookEvent{Kind: BookCreated, Book: &b}
}

// BookUpdate builds an update event carrying the full current book.
func BookUpdate(b model.Book) BookEvent {
	return BookEvent{Kind: BookUpdated, Book: &b}
}

// BookDelete builds a deletion event for the given book id.
func BookDelete(id string) BookEvent {
	return BookEvent{Kind: BookDeleted, BookID: id}
}

// Buses is the application-root set of bus instances. It is constructed
// once at startup and injected into everything that publishes or
// subscribes; there is no package-level bus state.
type Buses struct {
	// Recipes carries recipe create/update/delete/refresh events.
	Recipes *Bus[RecipeEvent]
	// RecipesCleared signals "discard all locally held recipes" (sign-out).
	RecipesCleared *Signal
	// Books carries book create/update/delete events.
	Books *Bus[BookEvent]
	// Profile carries full-replacement profile values, never deltas.
	Profile *Bus[model.UserProfile]
}

// New creates the root bus set.
func New(log zerolog.Logger) *Buses {
	return &Buses{
		Recipes:        NewBus[RecipeEvent]("recipes", log),
		RecipesCleared: NewSignal("recipes.cleared", log),
		Books:          NewBus[BookEvent]("books", log),
		Profile:        NewBus[model.UserProfile]("profile", log),
	}
}

// Reset drops every subscriber on every bus. Test isolation only.
func (b *Buses) Reset() {
	b.Recipes.Reset()
	b.RecipesCleared.Reset()
	b.Books.Reset()
	b.Profile.Reset()
}
