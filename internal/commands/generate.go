package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/serenidad/mealpack/internal/gateway"
	"github.com/serenidad/mealpack/internal/model"
	"github.com/serenidad/mealpack/internal/stream"
)

// GenerateCmd runs an AI generation session from a photo of a dish.
type GenerateCmd struct {
	flags *Flags
	image string
	save  bool
}

// NewGenerateCmd creates a new generate command
func NewGenerateCmd(flags *Flags) *GenerateCmd {
	return &GenerateCmd{flags: flags}
}

// Register adds the generate command to the application
func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "generate",
		Usage: "generate a recipe from a dish photo",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "image",
				Aliases:     []string{"i"},
				Usage:       "path to the dish photo",
				Required:    true,
				Destination: &cmd.image,
			},
			&cli.BoolFlag{
				Name:        "save",
				Usage:       "save the generated recipe when the stream completes",
				Destination: &cmd.save,
			},
		},
		Action: cmd.run,
	})

	return app
}

// reportProgress prints field arrivals as the stream delivers them.
func reportProgress(snap stream.Snapshot) {
	switch snap.Status {
	case stream.StatusUploading:
		fmt.Fprintf(os.Stderr, "\ruploading %3.0f%%", snap.UploadProgress*100)
	case stream.StatusAwaitingStream:
		fmt.Fprint(os.Stderr, "\rwaiting for generation...\n")
	case stream.StatusStreaming:
		var have []string
		if snap.Ready.Name {
			have = append(have, "name")
		}
		if snap.Ready.Description {
			have = append(have, "description")
		}
		if snap.Ready.Ingredients {
			have = append(have, "ingredients")
		}
		if snap.Ready.Directions {
			have = append(have, "directions")
		}
		fmt.Fprintf(os.Stderr, "\rreceived: %s", strings.Join(have, ", "))
	case stream.StatusCompleted:
		fmt.Fprintln(os.Stderr)
	}
}

func printRecipe(snap stream.Snapshot) {
	fmt.Printf("%s\n\n%s\n\nIngredients:\n", snap.Name, snap.Description)
	for _, line := range snap.Ingredients {
		fmt.Printf("  - %s\n", line)
	}
	fmt.Println("\nDirections:")
	for i, line := range snap.Directions {
		fmt.Printf("  %d. %s\n", i+1, line)
	}
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	session := stream.NewSession(client, client, log.Logger, reportProgress)
	if err := session.Generate(ctx, stream.FileImage(cmd.image)); err != nil {
		return err
	}

	snap := session.Snapshot()
	printRecipe(snap)

	if cmd.save {
		recipe, err := client.CreateRecipe(ctx, gateway.RecipeDraft{
			Name:        snap.Name,
			Description: snap.Description,
			ImageURL:    snap.ImageURL,
			Ingredients: snap.Ingredients,
			Directions:  snap.Directions,
		})
		if err != nil {
			return fmt.Errorf("saving generated recipe: %w", err)
		}
		log.Info().Str("id", recipe.ID).Msg("recipe saved")
	}
	return nil
}

// RegenerateCmd re-runs generation over an existing recipe with a free-text
// instruction.
type RegenerateCmd struct {
	flags    *Flags
	recipeID string
	prompt   string
	save     bool
}

// NewRegenerateCmd creates a new regenerate command
func NewRegenerateCmd(flags *Flags) *RegenerateCmd {
	return &RegenerateCmd{flags: flags}
}

// Register adds the regenerate command to the application
func (cmd *RegenerateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "regenerate",
		Usage: "rework an existing recipe with an instruction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "recipe",
				Aliases:     []string{"r"},
				Usage:       "recipe id to rework",
				Required:    true,
				Destination: &cmd.recipeID,
			},
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "instruction, e.g. \"make it vegetarian\"",
				Required:    true,
				Destination: &cmd.prompt,
			},
			&cli.BoolFlag{
				Name:        "save",
				Usage:       "write the reworked fields back to the recipe",
				Destination: &cmd.save,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RegenerateCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	state, err := client.FetchUserState(ctx)
	if err != nil {
		return err
	}
	var current *gateway.GenerationRecipe
	var recipeID string
	for _, r := range state.Recipes {
		if r.ID == cmd.recipeID {
			recipeID = r.ID
			current = &gateway.GenerationRecipe{
				Name:        r.Name,
				Description: r.Description,
				Ingredients: model.Texts(r.Ingredients),
				Directions:  model.Texts(r.Directions),
				ImageURL:    r.ImageURL,
			}
			break
		}
	}
	if current == nil {
		return fmt.Errorf("recipe %s not found", cmd.recipeID)
	}

	session := stream.NewSession(client, client, log.Logger, reportProgress)
	if err := session.Regenerate(ctx, *current, cmd.prompt); err != nil {
		return err
	}

	snap := session.Snapshot()
	printRecipe(snap)

	if cmd.save {
		if _, err := client.EditRecipe(ctx, recipeID, gateway.RecipeEdit{
			Name:        snap.Name,
			Description: snap.Description,
			ImageURL:    snap.ImageURL,
			Ingredients: model.Lines(snap.Ingredients),
			Directions:  model.Lines(snap.Directions),
		}); err != nil {
			return fmt.Errorf("saving reworked recipe: %w", err)
		}
		log.Info().Str("id", recipeID).Msg("recipe updated")
	}
	return nil
}
