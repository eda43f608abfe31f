package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/serenidad/mealpack/internal/model"
)

// ListCmd prints the caller's recipes, or books with --books.
type ListCmd struct {
	flags *Flags
	books bool
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "list",
		Usage: "list your recipes (or books)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "books",
				Usage:       "list books instead of recipes",
				Destination: &cmd.books,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if cmd.books {
		books, err := client.GetBooks(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tPAGES\tAUTHOR")
		for _, b := range books {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.ID, b.Name, len(b.Pages), b.Author.Name)
		}
		return nil
	}

	state, err := client.FetchUserState(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "ID\tNAME\tINGREDIENTS\tOWNED")
	for _, r := range state.Recipes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", r.ID, r.Name, len(r.Ingredients), owned(r, state.Profile))
	}
	return nil
}

func owned(r model.Recipe, p model.UserProfile) bool {
	return r.Owns(p.ID)
}
