package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

// errUnavailable makes the process exit non-zero when the selection cannot be priced.
var errUnavailable = errors.New("selection is unavailable")

func newQuoteCmd(opts *options) *cobra.Command {
	var (
		city   string
		tenure int
		addOns []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "quote <product-id>",
		Short: "Price a rental for a city, tenure and add-ons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := opts.calculator()
			if err != nil {
				return err
			}
			catalogSvc, _, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			svc := pricing.NewService(catalogSvc, calc, opts.log)
			q, err := svc.Quote(cmd.Context(), types.ID(args[0]), pricing.QuoteRequest{
				City:         city,
				TenureMonths: tenure,
				AddOnIDs:     addOns,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(q); err != nil {
					return err
				}
			case "text":
				if err := printQuote(out, q); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown --format %q (want text or json)", format)
			}
			if !q.Available {
				return fmt.Errorf("%w: %s", errUnavailable, q.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city to rent in")
	cmd.Flags().IntVarP(&tenure, "tenure", "t", 0, "tenure in months")
	cmd.Flags().StringSliceVarP(&addOns, "addon", "a", nil, "add-on id (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	return cmd
}

func printQuote(w io.Writer, q *pricing.Quote) error {
	if !q.Available {
		_, err := fmt.Fprintf(w, "%s: unavailable (%s)\n", q.ProductID, q.Reason)
		return err
	}
	b := q.Breakdown
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s, %d months\t\n", q.ProductID, b.City, b.TenureMonths)
	fmt.Fprintf(tw, "monthly rent\t%s\t\n", b.MonthlyRent)
	fmt.Fprintf(tw, "rent x %d\t%s\t\n", b.TenureMonths, b.RentTotal)
	fmt.Fprintf(tw, "deposit\t%s\t\n", b.Deposit)
	fmt.Fprintf(tw, "delivery\t%s\t\n", b.DeliveryCharge)
	for _, a := range b.AddOns {
		fmt.Fprintf(tw, "%s x %d\t%s\t\n", a.ID, a.Quantity, a.Amount)
	}
	fmt.Fprintf(tw, "subtotal\t%s\t\n", b.Subtotal)
	fmt.Fprintf(tw, "gst @ %s\t%s\t\n", b.TaxRate, b.GST)
	fmt.Fprintf(tw, "total\t%s\t\n", b.Total)
	fmt.Fprintf(tw, "due at booking\t%s\t\n", b.FirstMonthPayment)
	return tw.Flush()
}
