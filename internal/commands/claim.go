package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// claimScheme is the deep-link prefix recipe shares are sent as.
const claimScheme = "mealpack://claim/"

// ParseClaimTarget extracts the share code from either a bare code or a
// "mealpack://claim/<code>" deep link.
func ParseClaimTarget(s string) (string, error) {
	code := s
	if rest, ok := strings.CutPrefix(s, claimScheme); ok {
		code = rest
	} else if strings.Contains(s, "://") {
		return "", fmt.Errorf("invalid claim link %q: unknown scheme", s)
	}

	code = strings.TrimSuffix(code, "/")
	if code == "" || strings.Contains(code, "/") {
		return "", fmt.Errorf("invalid claim target %q", s)
	}
	return code, nil
}

// ClaimCmd copies a shared recipe into the caller's collection.
type ClaimCmd struct {
	flags *Flags
}

// NewClaimCmd creates a new claim command
func NewClaimCmd(flags *Flags) *ClaimCmd {
	return &ClaimCmd{flags: flags}
}

// Register adds the claim command to the application
func (cmd *ClaimCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "claim",
		Usage:     "claim a shared recipe by code or mealpack://claim/<code> link",
		ArgsUsage: "<code-or-link>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *ClaimCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one share code or link")
	}
	code, err := ParseClaimTarget(c.Args().First())
	if err != nil {
		return err
	}

	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	res, err := client.ClaimShareCode(ctx, code)
	if err != nil {
		return fmt.Errorf("claiming %s: %w", code, err)
	}

	ev := log.Info().Str("id", res.Recipe.ID).Str("name", res.Recipe.Name)
	if res.SharedBy != nil {
		ev = ev.Str("shared_by", res.SharedBy.Name)
	}
	ev.Msg("recipe claimed")
	fmt.Println(res.Recipe.ID)
	return nil
}

// ShareCodeCmd mints a claim link for one of the caller's recipes.
type ShareCodeCmd struct {
	flags    *Flags
	recipeID string
}

// NewShareCodeCmd creates a new share-code command
func NewShareCodeCmd(flags *Flags) *ShareCodeCmd {
	return &ShareCodeCmd{flags: flags}
}

// Register adds the share-code command to the application
func (cmd *ShareCodeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "share-code",
		Usage: "create a claim link for a recipe",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "recipe",
				Aliases:     []string{"r"},
				Usage:       "recipe id to share",
				Required:    true,
				Destination: &cmd.recipeID,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShareCodeCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	code, err := client.CreateShareCode(ctx, cmd.recipeID)
	if err != nil {
		return err
	}

	fmt.Println(claimScheme + code)
	return nil
}
