package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every product in the catalog file against the pricing rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readCatalog(opts.catalogFile)
			if err != nil {
				return err
			}
			_, rejected, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			idx := make([]int, 0, len(rejected))
			for i := range rejected {
				idx = append(idx, i)
			}
			sort.Ints(idx)
			for _, i := range idx {
				name := fmt.Sprintf("#%d", i+1)
				if p := products[i]; p != nil && p.ID != "" {
					name = string(p.ID)
				}
				fmt.Fprintf(out, "INVALID %s: %v\n", name, rejected[i])
			}
			fmt.Fprintf(out, "%d products, %d valid, %d invalid\n", len(products), len(products)-len(rejected), len(rejected))
			if len(rejected) > 0 {
				return fmt.Errorf("%d invalid products", len(rejected))
			}
			return nil
		},
	}
}
