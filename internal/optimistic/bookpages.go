package optimistic

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/model"
)

// BookAPI is the slice of the gateway used for page-set edits.
type BookAPI interface {
	AddBookPage(ctx context.Context, bookID, recipeID string) error
	RemoveBookPage(ctx context.Context, bookID, recipeID string) error
	RefreshBook(ctx context.Context, id string) (model.Book, error)
}

// PageDiff computes the add/remove sets that turn current into selected.
// Both outputs are sorted so callers and tests see deterministic order;
// the calls themselves may run in any order.
func PageDiff(current, selected []string) (toAdd, toRemove []string) {
	cur := make(map[string]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}

	for id := range sel {
		if !cur[id] {
			toAdd = append(toAdd, id)
		}
	}
	for id := range cur {
		if !sel[id] {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}

// BookPages reconciles a book's page set against a target selection.
type BookPages struct {
	api BookAPI
	bus *events.Bus[events.BookEvent]
	log zerolog.Logger
}

// NewBookPages creates the reconciler.
func NewBookPages(api BookAPI, bus *events.Bus[events.BookEvent], log zerolog.Logger) *BookPages {
	return &BookPages{api: api, bus: bus, log: log}
}

// Apply diffs the book's current recipe set against selected, issues the
// add/remove calls concurrently, then re-fetches the canonical book once
// and emits it as an update. On partial failure the first error is
// returned, but the canonical re-fetch and update emission still happen:
// the UI reconciles to whatever the server reports, never to the
// pre-computed diff.
func (b *BookPages) Apply(ctx context.Context, book model.Book, selected []string) (model.Book, error) {
	var current []string
	for id := range book.RecipeIDs() {
		current = append(current, id)
	}
	toAdd, toRemove := PageDiff(current, selected)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, id := range toAdd {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(b.api.AddBookPage(ctx, book.ID, id))
		}()
	}
	for _, id := range toRemove {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(b.api.RemoveBookPage(ctx, book.ID, id))
		}()
	}
	wg.Wait()

	if firstErr != nil {
		b.log.Warn().Err(firstErr).Str("book", book.ID).Msg("partial page edit failure, reconciling to server state")
	}

	fresh, err := b.api.RefreshBook(ctx, book.ID)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return book, firstErr
	}

	b.bus.Emit(events.BookUpdate(fresh))
	return fresh, firstErr
}
