package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

var otpFlags struct {
	phone string
	code  string
}

var sendOTPCmd = &cobra.Command{
	Use:   "send-otp",
	Short: "Deliver a one-time code with the otp_verification template",
	RunE: func(cmd *cobra.Command, args []string) error {
		if otpFlags.code == "" {
			return domain.ErrMissingOTPCode
		}
		c, err := newClients()
		if err != nil {
			return err
		}
		defer c.logger.Sync() //nolint:errcheck

		res := c.dispatcher.SendOTP(cmd.Context(), otpFlags.phone, otpFlags.code)
		if err := printJSON(cmd, res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("otp not delivered")
		}
		return nil
	},
}

func init() {
	sendOTPCmd.Flags().StringVar(&otpFlags.phone, "phone", "", "destination phone number")
	sendOTPCmd.Flags().StringVar(&otpFlags.code, "code", "", "the code to deliver")
	_ = sendOTPCmd.MarkFlagRequired("phone")
	_ = sendOTPCmd.MarkFlagRequired("code")

	rootCmd.AddCommand(sendOTPCmd)
}
