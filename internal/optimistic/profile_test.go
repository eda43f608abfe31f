package optimistic

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/model"
)

type fakeProfileAPI struct {
	nameErr    error
	pictureErr error
	canonical  string
}

func (f *fakeProfileAPI) UpdateName(ctx context.Context, name string) error {
	return f.nameErr
}

func (f *fakeProfileAPI) UpdateProfilePicture(ctx context.Context, url string) (string, error) {
	if f.pictureErr != nil {
		return "", f.pictureErr
	}
	if f.canonical != "" {
		return f.canonical, nil
	}
	return url, nil
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) UploadFile(ctx context.Context, filename string, r io.Reader, onProgress func(float64)) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if onProgress != nil {
		onProgress(1.0)
	}
	return f.url, nil
}

func newProfileFixture(api *fakeProfileAPI, up *fakeUploader) (*ProfileController, *[]model.UserProfile) {
	bus := events.NewBus[model.UserProfile]("profile", zerolog.Nop())
	var seen []model.UserProfile
	bus.Subscribe(func(p model.UserProfile) { seen = append(seen, p) })

	initial := model.UserProfile{ID: "u1", Name: "Alice", ProfilePictureURL: "https://cdn/old.jpg"}
	ctrl := NewProfileController(api, up, bus, zerolog.Nop(), initial)
	return ctrl, &seen
}

func TestSetNameRollsBackOnFailure(t *testing.T) {
	ctrl, seen := newProfileFixture(&fakeProfileAPI{nameErr: errors.New("boom")}, &fakeUploader{})

	err := ctrl.SetName(context.Background(), "Bob")
	if err == nil {
		t.Fatal("SetName returned nil, want error")
	}

	if got := ctrl.Current().Name; got != "Alice" {
		t.Errorf("Current().Name = %q, want %q", got, "Alice")
	}

	// Optimistic emit then rollback emit, both full profiles.
	if len(*seen) != 2 {
		t.Fatalf("bus saw %d emissions, want 2", len(*seen))
	}
	if (*seen)[0].Name != "Bob" || (*seen)[1].Name != "Alice" {
		t.Errorf("emissions = [%q, %q], want [Bob, Alice]", (*seen)[0].Name, (*seen)[1].Name)
	}
}

func TestSetNameSuccess(t *testing.T) {
	ctrl, seen := newProfileFixture(&fakeProfileAPI{}, &fakeUploader{})

	if err := ctrl.SetName(context.Background(), "Bob"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if got := ctrl.Current().Name; got != "Bob" {
		t.Errorf("Current().Name = %q, want %q", got, "Bob")
	}
	if len(*seen) != 1 {
		t.Fatalf("bus saw %d emissions, want 1", len(*seen))
	}
}

func TestSetPictureCanonicalSupersedes(t *testing.T) {
	api := &fakeProfileAPI{canonical: "https://cdn/canonical.jpg"}
	ctrl, seen := newProfileFixture(api, &fakeUploader{url: "https://cdn/hosted.jpg"})

	err := ctrl.SetPicture(context.Background(), "file:///tmp/pic.jpg", "pic.jpg", strings.NewReader("img"), nil)
	if err != nil {
		t.Fatalf("SetPicture: %v", err)
	}

	if got := ctrl.Current().ProfilePictureURL; got != "https://cdn/canonical.jpg" {
		t.Errorf("picture = %q, want canonical URL", got)
	}

	// Local URI first, canonical second.
	if len(*seen) != 2 {
		t.Fatalf("bus saw %d emissions, want 2", len(*seen))
	}
	if (*seen)[0].ProfilePictureURL != "file:///tmp/pic.jpg" {
		t.Errorf("first emission = %q, want optimistic local URI", (*seen)[0].ProfilePictureURL)
	}
}

func TestSetPictureRollsBackOnUploadFailure(t *testing.T) {
	ctrl, seen := newProfileFixture(&fakeProfileAPI{}, &fakeUploader{err: errors.New("upload failed")})

	err := ctrl.SetPicture(context.Background(), "file:///tmp/pic.jpg", "pic.jpg", strings.NewReader("img"), nil)
	if err == nil {
		t.Fatal("SetPicture returned nil, want error")
	}

	if got := ctrl.Current().ProfilePictureURL; got != "https://cdn/old.jpg" {
		t.Errorf("picture = %q, want previous URL restored", got)
	}
	if len(*seen) != 2 {
		t.Fatalf("bus saw %d emissions, want 2 (optimistic + rollback)", len(*seen))
	}
}
