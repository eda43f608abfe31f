package model

// UserProfile is the logged-in user. At most one profile value is live per
// session; the profile bus always broadcasts a full replacement.
type UserProfile struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"` // absent for guest accounts
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}
