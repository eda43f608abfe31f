package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// LoginCmd implements the email OTP login flow.
type LoginCmd struct {
	flags *Flags
	email string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "login",
		Usage: "request a one-time code and store the auth token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email address",
				Required:    true,
				Destination: &cmd.email,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	if err := client.CreateOTP(ctx, cmd.email); err != nil {
		return fmt.Errorf("requesting code for %s: %w", cmd.email, err)
	}
	fmt.Fprintf(os.Stderr, "A one-time code was sent to %s.\n", cmd.email)
	fmt.Fprint(os.Stderr, "Code: ")

	reader := bufio.NewReader(os.Stdin)
	otp, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading code: %w", err)
	}
	otp = strings.TrimSpace(otp)

	tok, err := client.VerifyOTP(ctx, cmd.email, otp)
	if err != nil {
		return fmt.Errorf("verifying code: %w", err)
	}

	store, err := cmd.flags.tokens()
	if err != nil {
		return err
	}
	if err := store.SetToken(tok); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	log.Info().Str("email", cmd.email).Msg("logged in")
	return nil
}

// LogoutCmd removes the stored auth token.
type LogoutCmd struct {
	flags *Flags
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags) *LogoutCmd {
	return &LogoutCmd{flags: flags}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "logout",
		Usage:  "forget the stored auth token",
		Action: cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, c *cli.Command) error {
	store, err := cmd.flags.tokens()
	if err != nil {
		return err
	}
	if err := store.RemoveToken(); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	log.Info().Msg("logged out")
	return nil
}
