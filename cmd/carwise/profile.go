package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileSummary bool

var profileCmd = &cobra.Command{
	Use:   "profile <vin>",
	Short: "Build the reconciled profile for a VIN",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&profileSummary, "summary", false, "Print the plain-text summary instead of JSON")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, _, err := loadApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	if profileSummary {
		summary, err := a.Profiles().Summary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
		return err
	}

	p, err := a.Profiles().Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), p)
}
