package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "copd-intake-service"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "COPD patient intake, severity triage and remote review",
		Long: `copd-intake-service accepts COPD patient intake forms, classifies the
severity of the submitted vital signs and stores each accepted intake for
a remote consultant to review.

Run "serve" to start the HTTP API.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newValidateCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
