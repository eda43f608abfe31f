// Package model defines the MealPack domain types shared by the gateway,
// the event buses, and the sync layer. All other packages depend on model;
// model depends on nothing.
package model

// Recipe is a complete recipe as held by the server. An update event always
// carries the full representation; partial recipes exist only inside a
// generation session.
type Recipe struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Ingredients []Line  `json:"ingredients"`
	Directions  []Line  `json:"directions"`
	Author      Author  `json:"author"`
	CreatedAt   string  `json:"created_at"`
	Shares      []Share `json:"shares,omitempty"`
}

// Line is one ordered entry in an ingredient or direction list.
type Line struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// Author identifies the user who created a recipe or book.
type Author struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Share records one grant of a recipe to another user.
type Share struct {
	Email    string `json:"email,omitempty"`
	SharedAt string `json:"shared_at,omitempty"`
}

// Owns reports whether the profile with the given id authored the recipe.
// Author.ID is the single source of ownership.
func (r Recipe) Owns(profileID string) bool {
	return profileID != "" && r.Author.ID == profileID
}

// Lines converts a plain string slice into ordered lines, dropping empty
// entries and renumbering positions from zero.
func Lines(texts []string) []Line {
	out := make([]Line, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		out = append(out, Line{Text: t, Position: len(out)})
	}
	return out
}

// Texts flattens ordered lines back into their text values.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
