package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/serenidad/mealpack/internal/gateway"
)

// Status is the lifecycle state of one generation session.
type Status int

const (
	// StatusIdle is the initial state, before an image is submitted.
	StatusIdle Status = iota
	// StatusUploading covers the image upload to the file host.
	StatusUploading
	// StatusAwaitingStream covers the window between issuing the
	// generation request and the first field frame ("processing" frames
	// keep the session here).
	StatusAwaitingStream
	// StatusStreaming means at least one field frame has been applied.
	StatusStreaming
	// StatusCompleted is terminal: the server signalled no more frames.
	StatusCompleted
	// StatusError is terminal. Fields already received stay visible and
	// editable so partially-generated content can still be saved.
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusAwaitingStream:
		return "awaiting-stream"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrSessionUsed is returned when Generate or Regenerate is called on a
// session that already ran. Sessions are single-use: a new image selection
// or edit request starts a fresh session.
var ErrSessionUsed = errors.New("generation session already used")

// FieldsReady gates editability: a field may be edited only once its flag
// is set by the corresponding frame.
type FieldsReady struct {
	Name        bool
	Description bool
	Ingredients bool
	Directions  bool
}

// All reports whether every field has arrived.
func (r FieldsReady) All() bool {
	return r.Name && r.Description && r.Ingredients && r.Directions
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Status         Status
	UploadProgress float64
	ImageURL       string
	Name           string
	Description    string
	Ingredients    []string
	Directions     []string
	Ready          FieldsReady
	LastError      string
}

// Uploader hosts the source image and returns its URL.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, r io.Reader, onProgress func(float64)) (string, error)
}

// Generator opens the streaming generation endpoints.
type Generator interface {
	GenerateRecipe(ctx context.Context, filename string, image io.Reader) (io.ReadCloser, error)
	RegenerateRecipe(ctx context.Context, recipe gateway.GenerationRecipe, prompt string) (io.ReadCloser, error)
}

// Image is a re-openable image source: it is read once for the upload and
// once for the generation request.
type Image struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileImage builds an Image from a path on disk.
func FileImage(path string) Image {
	return Image{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Session drives one AI recipe generation or regeneration attempt. It is
// single-use; create a fresh session per attempt. All state access is
// through Snapshot, which is safe to call from any goroutine while the
// session runs.
type Session struct {
	id       string
	uploader Uploader
	gen      Generator
	log      zerolog.Logger
	onChange func(Snapshot)

	mu      sync.Mutex
	snap    Snapshot
	started bool
	aborted bool
	cancel  context.CancelFunc
}

// NewSession creates an idle session. onChange, when non-nil, is invoked
// after every state change with a consistent snapshot; it runs on the
// session's goroutine and must not block.
func NewSession(uploader Uploader, gen Generator, log zerolog.Logger, onChange func(Snapshot)) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		uploader: uploader,
		gen:      gen,
		log:      log.With().Str("session", id[:8]).Logger(),
		onChange: onChange,
		snap:     Snapshot{Status: StatusIdle},
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *Session) cloneLocked() Snapshot {
	snap := s.snap
	snap.Ingredients = append([]string(nil), s.snap.Ingredients...)
	snap.Directions = append([]string(nil), s.snap.Directions...)
	return snap
}

// update mutates state under the lock and notifies the change listener.
func (s *Session) update(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.snap)
	snap := s.cloneLocked()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Abort tears the session down: the in-flight request is cancelled and any
// late-arriving frames are discarded without mutating state.
func (s *Session) Abort() {
	s.mu.Lock()
	s.aborted = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.log.Debug().Msg("session aborted")
}

func (s *Session) isAborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// begin marks the session used and wires cancellation. Returns an error if
// the session already ran.
func (s *Session) begin(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, ErrSessionUsed
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return ctx, nil
}

// fail moves the session to Error, keeping any fields already received.
func (s *Session) fail(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	s.update(func(sn *Snapshot) {
		sn.Status = StatusError
		sn.LastError = msg
	})
	s.log.Warn().Str("reason", msg).Msg("session failed")
	return errors.New(msg)
}

// Generate runs the full image-to-recipe flow: upload the image, open the
// generation stream, and apply frames until completion. It blocks until
// the session reaches a terminal state or ctx is cancelled.
func (s *Session) Generate(ctx context.Context, img Image) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	s.update(func(sn *Snapshot) { sn.Status = StatusUploading })

	src, err := img.Open()
	if err != nil {
		return s.fail("open image: %v", err)
	}
	hosted, err := s.uploader.UploadFile(ctx, img.Name, src, func(f float64) {
		s.update(func(sn *Snapshot) { sn.UploadProgress = f })
	})
	src.Close()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.fail("image upload failed: %v", err)
	}

	s.update(func(sn *Snapshot) {
		sn.ImageURL = hosted
		sn.Status = StatusAwaitingStream
	})
	s.log.Debug().Str("image_url", hosted).Msg("image uploaded, opening stream")

	src, err = img.Open()
	if err != nil {
		return s.fail("open image: %v", err)
	}
	body, err := s.gen.GenerateRecipe(ctx, img.Name, src)
	src.Close()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.fail("generation request failed: %v", err)
	}
	defer body.Close()

	return s.consume(ctx, body)
}

// Regenerate runs the edit-instruction variant against the current
// (possibly user-edited) recipe. Previously generated values stay visible
// as placeholders, but every ready flag resets: fields are non-editable
// again until their _regenerated frame arrives.
func (s *Session) Regenerate(ctx context.Context, current gateway.GenerationRecipe, prompt string) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	s.update(func(sn *Snapshot) {
		sn.Status = StatusAwaitingStream
		sn.Name = current.Name
		sn.Description = current.Description
		sn.Ingredients = append([]string(nil), current.Ingredients...)
		sn.Directions = append([]string(nil), current.Directions...)
		sn.ImageURL = current.ImageURL
		sn.Ready = FieldsReady{}
	})

	body, err := s.gen.RegenerateRecipe(ctx, current, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.fail("regeneration request failed: %v", err)
	}
	defer body.Close()

	return s.consume(ctx, body)
}

// consume applies frames in arrival order until the stream ends.
func (s *Session) consume(ctx context.Context, body io.Reader) error {
	sc := NewScanner(body, s.log)
	for {
		frame, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return s.fail("stream read failed: %v", err)
		}
		if s.isAborted() {
			// Teardown raced the read: drop the late frame.
			return ctx.Err()
		}
		s.apply(frame)
	}

	s.mu.Lock()
	status, lastErr := s.snap.Status, s.snap.LastError
	s.mu.Unlock()

	switch status {
	case StatusCompleted:
		return nil
	case StatusError:
		return errors.New(lastErr)
	default:
		return s.fail("stream ended before completion")
	}
}

// apply folds one frame into the session state. Generation and
// regeneration tags have identical effects.
func (s *Session) apply(frame Frame) {
	if frame.Error != "" {
		// Fields already received stay visible.
		s.update(func(sn *Snapshot) {
			sn.Status = StatusError
			sn.LastError = frame.Error
		})
		return
	}

	switch frame.Status {
	case "processing":
		// Keep-alive while the model inspects the image.
	case "name_generated", "name_regenerated":
		s.applyField(func(sn *Snapshot) {
			sn.Name = frame.Recipe.Name
			sn.Ready.Name = true
		})
	case "description_generated", "description_regenerated":
		s.applyField(func(sn *Snapshot) {
			sn.Description = frame.Recipe.Description
			sn.Ready.Description = true
		})
	case "ingredients_generated", "ingredients_regenerated":
		s.applyField(func(sn *Snapshot) {
			sn.Ingredients = append([]string(nil), frame.Recipe.Ingredients...)
			sn.Ready.Ingredients = true
		})
	case "directions_generated", "directions_regenerated":
		s.applyField(func(sn *Snapshot) {
			sn.Directions = append([]string(nil), frame.Recipe.Directions...)
			sn.Ready.Directions = true
		})
	case "completed":
		s.update(func(sn *Snapshot) {
			if sn.Status != StatusError {
				sn.Status = StatusCompleted
			}
		})
	default:
		s.log.Debug().Str("status", frame.Status).Msg("ignoring unknown frame tag")
	}
}

// applyField records an arrived field and moves the session to Streaming
// unless it already reached a terminal state.
func (s *Session) applyField(mutate func(*Snapshot)) {
	s.update(func(sn *Snapshot) {
		mutate(sn)
		if sn.Status == StatusAwaitingStream || sn.Status == StatusUploading {
			sn.Status = StatusStreaming
		}
	})
}
