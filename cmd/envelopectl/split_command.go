package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/allocator"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

func newSplitCommand() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "split <amount> <count>",
		Short: "Simulate how an envelope would be divided",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := entity.ValidateAndConvertAmount(args[0])
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("count: %w", err)
			}
			if err := entity.ValidateEnvelopeRequest(total, count); err != nil {
				return err
			}

			var src rand.Source
			if seed != 0 {
				src = rand.NewPCG(seed, seed)
			}
			shares, err := allocator.New(src).Split(total, count)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(shares))
			for i, share := range shares {
				rows = append(rows, []string{strconv.Itoa(i + 1), entity.AmountInCentsToString(share)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"#", "AMOUNT"}, rows, []columnAlignment{alignRight, alignRight}))
			fmt.Fprintf(out, "total: %s\n", entity.AmountInCentsToString(total))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible split")
	return cmd
}
