package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"logitrack-api/models"
	"logitrack-api/statemachine"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addressFlags(fs *pflag.FlagSet, prefix string, addr *models.Address) {
	fs.StringVar(&addr.Name, prefix+"-name", "", prefix+" contact name")
	fs.StringVar(&addr.Address, prefix+"-address", "", prefix+" street address")
	fs.StringVar(&addr.City, prefix+"-city", "", prefix+" city")
	fs.StringVar(&addr.Zip, prefix+"-zip", "", prefix+" postal code")
	fs.StringVar(&addr.Country, prefix+"-country", "", prefix+" country")
	fs.StringVar(&addr.Phone, prefix+"-phone", "", prefix+" phone")
	fs.StringVar(&addr.Email, prefix+"-email", "", prefix+" email (optional)")
}

func printStepError(w io.Writer, err error) {
	var stepErr *statemachine.StepError
	if !errors.As(err, &stepErr) {
		return
	}
	printf(w, "%s %s step:\n", styles.err.Render("✗"), stepErr.Step)
	for _, p := range stepErr.Problems {
		printf(w, "  - %s\n", p)
	}
}

func (a *app) bookCmd() *cobra.Command {
	var service string
	draft := statemachine.NewDraft()
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a shipment",
		Long: `Book a shipment by walking the booking steps:
service, package, addresses, schedule and payment.

Each step is checked before moving on; the first incomplete step is reported
with what is missing. Card details are only used to complete the form and
are never sent to the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			wiz := statemachine.NewWizard()
			if err := wiz.SelectService(service); err != nil {
				return err
			}
			d := draft
			d.ServiceType = wiz.Draft.ServiceType
			wiz.Draft = d

			for wiz.Step < statemachine.StepPayment {
				if err := wiz.Next(); err != nil {
					printStepError(cmd.ErrOrStderr(), err)
					return fmt.Errorf("booking incomplete at the %s step", wiz.Step)
				}
			}

			est := wiz.Estimate()
			printf(out, "%s %s, %s × %s/kg + %s fee = %s\n",
				styles.title.Render("Estimate:"), est.Service, weight(est.Weight),
				money(est.PerKgRate), money(est.ServiceFee), styles.title.Render(money(est.Total)))

			lr, err := wiz.Submit(cmd.Context(), a.client)
			if err != nil {
				printStepError(cmd.ErrOrStderr(), err)
				if errors.Is(err, statemachine.ErrSubmitFailed) {
					a.log.Debug("booking submit failed")
					return errors.New(statemachine.SubmitFailedMessage)
				}
				return err
			}
			printf(out, "%s Booking confirmed. Your tracking number is %s\n", styles.ok.Render("✓"), styles.title.Render(lr))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&service, "service", "", "service: road, air, ocean or express")
	fs.StringVar(&draft.PackageType, "package-type", draft.PackageType, "package type: "+strings.Join(statemachine.PackageTypes, ", "))
	fs.Float64Var(&draft.Weight, "weight", draft.Weight, "weight in kg")
	fs.Float64Var(&draft.Length, "length", draft.Length, "length in cm")
	fs.Float64Var(&draft.Width, "width", draft.Width, "width in cm")
	fs.Float64Var(&draft.Height, "height", draft.Height, "height in cm")
	fs.StringVar(&draft.Description, "description", "", "contents description")
	addressFlags(fs, "pickup", &draft.Pickup)
	addressFlags(fs, "delivery", &draft.Delivery)
	fs.StringVar(&draft.PickupDate, "date", "", "pickup date, YYYY-MM-DD")
	fs.StringVar(&draft.PickupTimeWindow, "window", "", "pickup window: morning, afternoon or evening")
	fs.StringVar(&draft.PaymentMethod, "payment", draft.PaymentMethod, "payment: credit or cash_on_delivery")
	fs.StringVar(&draft.Card.Number, "card-number", "", "card number")
	fs.StringVar(&draft.Card.Name, "card-name", "", "name on card")
	fs.StringVar(&draft.Card.Expiry, "card-expiry", "", "card expiry, MM/YY")
	fs.StringVar(&draft.Card.CVV, "card-cvv", "", "card CVV")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}
