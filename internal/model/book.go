package model

// Book is a named collection of recipes. A recipe appears at most once in a
// book's page list.
type Book struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Author   Author `json:"author"`
	Pages    []Page `json:"pages"`
}

// Page wraps one recipe inside a book.
type Page struct {
	ID     string `json:"id"`
	Recipe Recipe `json:"recipe"`
}

// RecipeIDs returns the set of recipe ids currently in the book.
func (b Book) RecipeIDs() map[string]bool {
	ids := make(map[string]bool, len(b.Pages))
	for _, p := range b.Pages {
		ids[p.Recipe.ID] = true
	}
	return ids
}
