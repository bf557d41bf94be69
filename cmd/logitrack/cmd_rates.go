package main

import (
	"fmt"
	"io"

	"logitrack-api/rates"

	"github.com/spf13/cobra"
)

func (a *app) servicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the shipping services",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := a.client.Services(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), services, func(w io.Writer) {
				t := newTable("ID", "Service", "Delivery", "Price range")
				for _, s := range services {
					t.Row(s.ID, s.Name, s.EstimatedTime, s.PriceRange)
				}
				fmt.Fprintln(w, t.Render())
			})
		},
	}
}

func (a *app) ratesCmd() *cobra.Command {
	var req rates.QuoteRequest
	var local bool
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Quote every service for a package",
		Long: `Quote every service for a package between two cities.

Dimensions are in centimetres and weight in kilograms. The chargeable weight
is the larger of the actual weight and L×W×H/5000.`,
		Example: `  logitrack rates --from "New York" --to Toronto --weight 5 --length 20 --width 20 --height 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				quote rates.Quote
				err   error
			)
			if local {
				quote, err = rates.Calculate(req)
			} else {
				quote, err = a.client.Rates(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), quote, func(w io.Writer) {
				printf(w, "%s → %s  (%s km)\n", styles.title.Render(quote.Origin), styles.title.Render(quote.Destination), fmt.Sprint(quote.DistanceKm))
				printf(w, "Volumetric weight %s, chargeable weight %s\n", weight(quote.VolumetricWeight), weight(quote.ChargeableWeight))
				t := newTable("Service", "Cost")
				for _, r := range quote.Rates {
					name := r.Service
					if s, ok := rates.LookupService(r.Service); ok {
						name = s.Name
					}
					t.Row(name, money(r.Cost))
				}
				fmt.Fprintln(w, t.Render())
			})
		},
	}
	cmd.Flags().StringVar(&req.Origin, "from", "", "origin city")
	cmd.Flags().StringVar(&req.Destination, "to", "", "destination city")
	cmd.Flags().Float64Var(&req.Weight, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&req.Length, "length", 0, "length in cm")
	cmd.Flags().Float64Var(&req.Width, "width", 0, "width in cm")
	cmd.Flags().Float64Var(&req.Height, "height", 0, "height in cm")
	cmd.Flags().BoolVar(&local, "offline", false, "compute the quote locally instead of asking the server")
	return cmd
}
