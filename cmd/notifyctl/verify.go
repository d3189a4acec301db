package main

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify-whatsapp",
	Short: "Check the WhatsApp Business credentials against the Graph API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClients()
		if err != nil {
			return err
		}

		info, err := c.whatsapp.VerifyConfiguration(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{
			"phone_number_id":     info.ID,
			"display_phone":       info.DisplayPhoneNumber,
			"verified_name":       info.VerifiedName,
			"quality_rating":      info.QualityRating,
			"business_account_id": c.cfg.WhatsAppBusinessAccountID,
		})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
