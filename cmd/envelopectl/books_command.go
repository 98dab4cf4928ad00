package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/bootstrap"
)

func newBooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the corpus envelopes draw their passages from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			books, err := bootstrap.LoadBooks(cfg)
			if err != nil {
				return err
			}

			var rows [][]string
			for _, b := range books.Books() {
				rows = append(rows, []string{b.Name, b.Author, strconv.Itoa(b.ExcerptCount)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"BOOK", "AUTHOR", "EXCERPTS"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}
