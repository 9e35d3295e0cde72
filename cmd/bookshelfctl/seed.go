package main

import (
	"context"
	"fmt"

	"bookshelf/backend/app/models"
	"bookshelf/backend/app/repo"

	"github.com/spf13/cobra"
)

type sampleBook struct {
	title, author, genre string
	year                 int
}

var catalogue = []sampleBook{
	{"1984", "George Orwell", "Dystopian", 1949},
	{"Animal Farm", "George Orwell", "Satire", 1945},
	{"The Art of War", "Sun Tzu", "Philosophy", 0},
	{"The Fellowship of the Ring", "J.R.R. Tolkien", "Fantasy", 1954},
	{"The Two Towers", "J.R.R. Tolkien", "Fantasy", 1954},
	{"The Return of the King", "J.R.R. Tolkien", "Fantasy", 1955},
	{"Dune", "Frank Herbert", "Science Fiction", 1965},
	{"Neuromancer", "William Gibson", "Science Fiction", 1984},
	{"The Big Sleep", "Raymond Chandler", "Noir", 1939},
	{"Romeo and Juliet", "William Shakespeare", "Tragedy", 1597},
	{"The Three Musketeers", "Alexandre Dumas", "Adventure", 1844},
	{"Pride and Prejudice", "Jane Austen", "Romance", 1813},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Science Fiction", 1969},
	{"Beloved", "Toni Morrison", "", 1987},
}

func (s sampleBook) book() *models.Book {
	b := &models.Book{Title: s.title, Author: s.author}
	if s.genre != "" {
		g := s.genre
		b.Genre = &g
	}
	if s.year >= 1000 {
		y := s.year
		b.PublishedYear = &y
	}
	return b
}

func newSeedCmd(open opener) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample catalogue",
		Long:  "Insert a sample catalogue. Does nothing when books already exist unless --force is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			books, err := e.books()
			if err != nil {
				return err
			}
			n, err := seed(cmd.Context(), books, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d books\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Insert even when the books table is not empty")
	return cmd
}

func seed(ctx context.Context, books *repo.BookRepository, force bool) (int, error) {
	if !force {
		st, err := books.Stats(ctx)
		if err != nil {
			return 0, err
		}
		if st.TotalBooks > 0 {
			return 0, nil
		}
	}
	inserted := 0
	for _, s := range catalogue {
		if _, err := books.Create(ctx, s.book()); err != nil {
			return inserted, fmt.Errorf("insert %q: %w", s.title, err)
		}
		inserted++
	}
	return inserted, nil
}
