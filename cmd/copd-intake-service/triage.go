package main

import (
	"errors"
	"fmt"

	"copd-intake-service/internal/domain/intake"

	"github.com/spf13/cobra"
)

var errInvalidIdentifiers = errors.New("one or more identifiers are invalid")

func newClassifyCmd() *cobra.Command {
	var spo2, fev1 int
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify COPD severity from SpO2 and FEV1",
		Example: `  copd-intake-service classify --spo2 93 --fev1 65
  Moderate Risk: Symptoms need attention. Review inhaler technique and schedule a follow-up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			severity := intake.ClassifySeverity(spo2, fev1)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", severity.Label(), severity.Recommendation())
			return err
		},
	}
	cmd.Flags().IntVar(&spo2, "spo2", 0, "Oxygen saturation, percent (required)")
	cmd.Flags().IntVar(&fev1, "fev1", 0, "FEV1, percent of predicted (required)")
	_ = cmd.MarkFlagRequired("spo2")
	_ = cmd.MarkFlagRequired("fev1")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var phone, nationalID string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a phone number and national ID against the intake rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			phoneOK := intake.ValidatePhone(phone)
			idOK := intake.ValidateNationalID(nationalID)
			fmt.Fprintf(out, "phone number: %s\n", verdict(phoneOK))
			fmt.Fprintf(out, "national ID:  %s\n", verdict(idOK))
			if !phoneOK || !idOK {
				return errInvalidIdentifiers
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number, 11 digits starting with 0")
	cmd.Flags().StringVar(&nationalID, "national-id", "", "National ID, 14 digits starting with 2 or 3")
	return cmd
}

func verdict(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}
