// Package commands holds the CLI commands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/serenidad/mealpack/internal/gateway"
	"github.com/serenidad/mealpack/internal/token"
)

// Flags are the global CLI flags shared by all commands.
type Flags struct {
	LogLevel  string
	NoColor   bool
	BaseURL   string
	TokenFile string
}

// tokenPath resolves the auth token location, defaulting to the user
// config directory.
func (f *Flags) tokenPath() (string, error) {
	if f.TokenFile != "" {
		return f.TokenFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "mealpack", "token"), nil
}

// tokens returns the persistent token store.
func (f *Flags) tokens() (token.Store, error) {
	path, err := f.tokenPath()
	if err != nil {
		return nil, err
	}
	return token.NewFileStore(path), nil
}

// client builds the remote gateway from the global flags.
func (f *Flags) client() (*gateway.Client, error) {
	store, err := f.tokens()
	if err != nil {
		return nil, err
	}

	opts := []gateway.Option{}
	if f.BaseURL != "" {
		opts = append(opts, gateway.WithBaseURL(f.BaseURL))
	}
	return gateway.NewClient(store, log.Logger, opts...), nil
}
