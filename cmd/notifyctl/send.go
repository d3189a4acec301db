package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

var sendFlags struct {
	recipient   domain.Recipient
	details     string
	detailsFile string
}

var sendCmd = &cobra.Command{
	Use:   "send <kind>",
	Short: "Send one notification (order, subscription, payment, promotion, menu, wallet, referral)",
	Example: `  notifyctl send order --user-id u1 --name Asha --phone 9876543210 \
    --details '{"order_id":"o100","status":"delivered"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readDetails(sendFlags.details, sendFlags.detailsFile)
		if err != nil {
			return err
		}
		ev, err := domain.DecodeEvent(domain.Kind(args[0]), raw)
		if err != nil {
			return err
		}
		if sendFlags.recipient.UserID == "" {
			return fmt.Errorf("--user-id is required")
		}

		c, err := newClients()
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		res := c.dispatcher.Notify(cmd.Context(), sendFlags.recipient, ev)
		if err := printJSON(cmd, res); err != nil {
			return err
		}
		if res.Failed() {
			return fmt.Errorf("one or more channels failed")
		}
		return nil
	},
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.recipient.UserID, "user-id", "", "recipient user id")
	f.StringVar(&sendFlags.recipient.Name, "name", "", "recipient display name")
	f.StringVar(&sendFlags.recipient.Phone, "phone", "", "WhatsApp phone number; empty skips WhatsApp")
	f.StringVar(&sendFlags.recipient.PushToken, "push-token", "", "Expo push token; empty skips push")
	f.StringVar(&sendFlags.details, "details", "", "event details as JSON")
	f.StringVar(&sendFlags.detailsFile, "details-file", "", "read event details from a JSON file")
	sendCmd.MarkFlagsMutuallyExclusive("details", "details-file")

	rootCmd.AddCommand(sendCmd)
}

func readDetails(inline, path string) (json.RawMessage, error) {
	if path == "" {
		return json.RawMessage(inline), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read details file: %w", err)
	}
	return b, nil
}
