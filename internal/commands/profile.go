package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/optimistic"
)

// ProfileCmd edits the caller's profile through the optimistic controller.
type ProfileCmd struct {
	flags   *Flags
	name    string
	picture string
}

// NewProfileCmd creates a new profile command
func NewProfileCmd(flags *Flags) *ProfileCmd {
	return &ProfileCmd{flags: flags}
}

// Register adds the profile command to the application
func (cmd *ProfileCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "profile",
		Usage: "show or edit your profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "set the display name",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "picture",
				Usage:       "set the profile picture from an image file",
				Destination: &cmd.picture,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ProfileCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	state, err := client.FetchUserState(ctx)
	if err != nil {
		return err
	}

	buses := events.New(log.Logger)
	ctrl := optimistic.NewProfileController(client, client, buses.Profile, log.Logger, state.Profile)

	if cmd.name != "" {
		if err := ctrl.SetName(ctx, cmd.name); err != nil {
			return fmt.Errorf("updating name: %w", err)
		}
	}
	if cmd.picture != "" {
		f, err := os.Open(cmd.picture)
		if err != nil {
			return err
		}
		defer f.Close()

		err = ctrl.SetPicture(ctx, cmd.picture, filepath.Base(cmd.picture), f, func(frac float64) {
			fmt.Fprintf(os.Stderr, "\ruploading %3.0f%%", frac*100)
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("updating picture: %w", err)
		}
	}

	p := ctrl.Current()
	fmt.Printf("%s <%s>\n", p.Name, p.Email)
	if p.ProfilePictureURL != "" {
		fmt.Println(p.ProfilePictureURL)
	}
	return nil
}
