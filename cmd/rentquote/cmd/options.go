package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

func newOptionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "options <product-id>",
		Short: "List the cities, tenures and add-ons a product can be rented with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogSvc, _, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			o, err := pricing.NewService(catalogSvc, pricing.DefaultCalculator(), opts.log).
				Options(cmd.Context(), types.ID(args[0]))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CITY\tMONTHS\tMONTHLY RENT\tDEPOSIT\tDELIVERY")
			for _, c := range o.Cities {
				for _, t := range c.Tenures {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", c.City, t.Months, t.MonthlyRent, c.Deposit, c.DeliveryCharge)
				}
			}
			if len(o.AddOns) > 0 {
				fmt.Fprintln(tw, "\nADD-ON\tTYPE\tPRICE\t\t")
				for _, a := range o.AddOns {
					fmt.Fprintf(tw, "%s\t%s\t%s\t\t\n", a.ID, a.Type, a.Price)
				}
			}
			return tw.Flush()
		},
	}
}
