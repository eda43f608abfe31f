package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/serenidad/mealpack/internal/stubserver"
)

// StubServerCmd runs the in-memory API stub for offline development.
type StubServerCmd struct {
	flags      *Flags
	addr       string
	frameDelay time.Duration
}

// NewStubServerCmd creates a new stub-server command
func NewStubServerCmd(flags *Flags) *StubServerCmd {
	return &StubServerCmd{flags: flags}
}

// Register adds the stub-server command to the application
func (cmd *StubServerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "stub-server",
		Usage: "run a local in-memory MealPack API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Sources:     cli.EnvVars("MEALPACK_STUB_ADDR"),
				Value:       "127.0.0.1:8080",
				Destination: &cmd.addr,
			},
			&cli.DurationFlag{
				Name:        "frame-delay",
				Usage:       "pause between generation stream frames",
				Value:       300 * time.Millisecond,
				Destination: &cmd.frameDelay,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StubServerCmd) run(ctx context.Context, c *cli.Command) error {
	stub := stubserver.New(log.Logger)
	stub.FrameDelay = cmd.frameDelay
	stub.SeedAccount("dev-token", "Dev User", "dev@example.com")

	srv := &http.Server{
		Addr:    cmd.addr,
		Handler: stub.Handler(os.Stdout),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cmd.addr).Msg("stub server listening (token: dev-token)")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("stub server stopped")
	return nil
}
