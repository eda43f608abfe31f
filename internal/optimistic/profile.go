package optimistic

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/model"
)

// ProfileAPI is the slice of the gateway used for profile edits.
type ProfileAPI interface {
	UpdateName(ctx context.Context, name string) error
	UpdateProfilePicture(ctx context.Context, pictureURL string) (string, error)
}

// Uploader hosts a file and returns its URL.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, r io.Reader, onProgress func(float64)) (string, error)
}

// ProfileController owns the authoritative in-memory copy of the current
// profile and propagates every change as a full replacement on the profile
// bus. All edits are optimistic.
type ProfileController struct {
	api      ProfileAPI
	uploader Uploader
	bus      *events.Bus[model.UserProfile]
	log      zerolog.Logger

	current model.UserProfile
}

// NewProfileController seeds the controller with the profile from the
// initial fetch.
func NewProfileController(api ProfileAPI, uploader Uploader, bus *events.Bus[model.UserProfile], log zerolog.Logger, initial model.UserProfile) *ProfileController {
	return &ProfileController{api: api, uploader: uploader, bus: bus, log: log, current: initial}
}

// Current returns the profile as currently held.
func (p *ProfileController) Current() model.UserProfile {
	return p.current
}

// mutation builds the shared Get/Set halves over the held profile.
func (p *ProfileController) mutation(commit func(ctx context.Context, next model.UserProfile) (model.UserProfile, bool, error)) Mutation[model.UserProfile] {
	return Mutation[model.UserProfile]{
		Get: func() model.UserProfile { return p.current },
		Set: func(v model.UserProfile) {
			p.current = v
			p.bus.Emit(v)
		},
		Commit: commit,
	}
}

// SetName applies the new display name locally and on the bus, then
// confirms it remotely, rolling back on failure.
func (p *ProfileController) SetName(ctx context.Context, name string) error {
	next := p.current
	next.Name = name

	m := p.mutation(func(ctx context.Context, next model.UserProfile) (model.UserProfile, bool, error) {
		return model.UserProfile{}, false, p.api.UpdateName(ctx, next.Name)
	})
	if err := m.Run(ctx, next); err != nil {
		p.log.Warn().Err(err).Msg("name update rolled back")
		return err
	}
	return nil
}

// SetPicture optimistically shows localURI, uploads the image, records the
// hosted URL against the profile, and supersedes the optimistic value with
// the canonical URL the server stored. Failure at either step rolls back
// to the previous picture.
func (p *ProfileController) SetPicture(ctx context.Context, localURI, filename string, image io.Reader, onProgress func(float64)) error {
	next := p.current
	next.ProfilePictureURL = localURI

	m := p.mutation(func(ctx context.Context, next model.UserProfile) (model.UserProfile, bool, error) {
		hosted, err := p.uploader.UploadFile(ctx, filename, image, onProgress)
		if err != nil {
			return model.UserProfile{}, false, err
		}
		canonicalURL, err := p.api.UpdateProfilePicture(ctx, hosted)
		if err != nil {
			return model.UserProfile{}, false, err
		}
		canonical := next
		canonical.ProfilePictureURL = canonicalURL
		return canonical, true, nil
	})
	if err := m.Run(ctx, next); err != nil {
		p.log.Warn().Err(err).Msg("picture update rolled back")
		return err
	}
	return nil
}
