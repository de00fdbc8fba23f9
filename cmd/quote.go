package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/blessandsoul/project-x-sub001/internal/model"
)

var (
	quoteCity     string
	quotePort     string
	quoteType     string
	quoteCategory string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <vehicle-id>",
	Short: "Compute landed-cost quotes for a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		route := model.RouteParams{
			City:            quoteCity,
			DestinationPort: quotePort,
			VehicleType:     model.VehicleType(quoteType),
			VehicleCategory: model.VehicleCategory(quoteCategory),
		}

		quotes, best, err := env.Calc.Compute(ctx, args[0], route)
		if err != nil {
			return err
		}

		if len(quotes) == 0 {
			fmt.Printf("no provider covers this route; indicative estimate %s\n", env.Calc.Indicative().Format())
			return nil
		}

		renderQuotes(os.Stdout, quotes)
		if best != nil {
			fmt.Printf("\nbest: %s at %s (%d days)\n", best.ProviderName, best.TotalCents.Format(), best.EstimatedDays)
		}
		return nil
	},
}

func renderQuotes(w io.Writer, quotes []model.Quote) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tVEHICLE\tSHIPPING\tCUSTOMS\tBROKER\tTOTAL\tDAYS\tBEST")
	for _, q := range quotes {
		mark := ""
		if q.IsBest {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			q.ProviderName,
			q.VehiclePriceCents.Format(),
			q.ShippingCents.Format(),
			q.CustomsCents.Format(),
			q.BrokerCents.Format(),
			q.TotalCents.Format(),
			q.EstimatedDays,
			mark,
		)
	}
	tw.Flush()
}

func init() {
	quoteCmd.Flags().StringVar(&quoteCity, "city", "", "US pickup city (required)")
	quoteCmd.Flags().StringVar(&quotePort, "port", "poti", "destination port")
	quoteCmd.Flags().StringVar(&quoteType, "type", "car", "vehicle type")
	quoteCmd.Flags().StringVar(&quoteCategory, "category", "standard", "vehicle category")
	quoteCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(quoteCmd)
}
