package main

import (
	"logitrack-api/client"

	"github.com/spf13/cobra"
)

func (a *app) contactCmd() *cobra.Command {
	var form client.ContactForm
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the LogiTrack team",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Contact(cmd.Context(), form); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s Your query has been sent successfully.\n", styles.ok.Render("✓"))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "your phone (optional)")
	cmd.Flags().StringVar(&form.Subject, "subject", "", "subject")
	cmd.Flags().StringVar(&form.Message, "message", "", "message")
	return cmd
}
