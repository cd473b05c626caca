package main

import (
	"github.com/spf13/cobra"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var seed int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one bulk processing pass and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := commandContext(cmd)
			if seed > 0 {
				if _, err := a.Service.Seed(ctx, seed); err != nil {
					return err
				}
			}
			res, err := a.Service.ProcessAll(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&seed, "seed", 0, "create N demo items before processing")
	return cmd
}
