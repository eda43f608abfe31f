package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/serenidad/mealpack/internal/events"
	"github.com/serenidad/mealpack/internal/optimistic"
)

// CreateBookCmd creates an empty recipe book.
type CreateBookCmd struct {
	flags    *Flags
	name     string
	imageURL string
}

// NewCreateBookCmd creates a new create-book command
func NewCreateBookCmd(flags *Flags) *CreateBookCmd {
	return &CreateBookCmd{flags: flags}
}

// Register adds the create-book command to the application
func (cmd *CreateBookCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "create-book",
		Usage: "create an empty recipe book",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "book name",
				Required:    true,
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "image-url",
				Usage:       "cover image URL",
				Destination: &cmd.imageURL,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CreateBookCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	book, err := client.CreateBook(ctx, cmd.name, cmd.imageURL)
	if err != nil {
		return err
	}

	log.Info().Str("id", book.ID).Str("name", book.Name).Msg("book created")
	fmt.Println(book.ID)
	return nil
}

// SetPagesCmd reconciles a book's page set against a recipe selection.
type SetPagesCmd struct {
	flags  *Flags
	bookID string
}

// NewSetPagesCmd creates a new set-pages command
func NewSetPagesCmd(flags *Flags) *SetPagesCmd {
	return &SetPagesCmd{flags: flags}
}

// Register adds the set-pages command to the application
func (cmd *SetPagesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set-pages",
		Usage:     "set a book's pages to exactly the given recipe ids",
		ArgsUsage: "<recipe-id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "book",
				Aliases:     []string{"b"},
				Usage:       "book id",
				Required:    true,
				Destination: &cmd.bookID,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SetPagesCmd) run(ctx context.Context, c *cli.Command) error {
	client, err := cmd.flags.client()
	if err != nil {
		return err
	}

	book, err := client.RefreshBook(ctx, cmd.bookID)
	if err != nil {
		return fmt.Errorf("loading book %s: %w", cmd.bookID, err)
	}

	buses := events.New(log.Logger)
	buses.Books.Subscribe(func(ev events.BookEvent) {
		if ev.Book != nil {
			log.Debug().Str("book", ev.Book.ID).Int("pages", len(ev.Book.Pages)).Msg("book updated")
		}
	})

	pages := optimistic.NewBookPages(client, buses.Books, log.Logger)
	fresh, err := pages.Apply(ctx, book, c.Args().Slice())
	if err != nil {
		return err
	}

	log.Info().Str("book", fresh.ID).Int("pages", len(fresh.Pages)).Msg("pages updated")
	return nil
}
