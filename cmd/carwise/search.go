package main

import (
	"github.com/spf13/cobra"

	"carwise/internal/core"
	"carwise/internal/search"
)

var searchFlags struct {
	budget      float64
	maxDistance float64
	bodyStyle   string
	fuelType    string
	vehicleMake string
	model       string
	minYear     int
	topK        int
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank live listings against shopping criteria",
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.Float64Var(&searchFlags.budget, "budget", 0, "Target price in dollars")
	f.Float64Var(&searchFlags.maxDistance, "max-distance", 0, "Maximum distance in miles")
	f.StringVar(&searchFlags.bodyStyle, "body-style", "", `Body style, or "not <style>" to exclude one`)
	f.StringVar(&searchFlags.fuelType, "fuel-type", "", "Fuel type substring")
	f.StringVar(&searchFlags.vehicleMake, "make", "", "Make substring")
	f.StringVar(&searchFlags.model, "model", "", "Model passed to the listing source")
	f.IntVar(&searchFlags.minYear, "min-year", 0, "Oldest model year passed to the listing source")
	f.IntVar(&searchFlags.topK, "top-k", search.DefaultTopK, "Number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, _, err := loadApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	results, err := a.Search().Search(cmd.Context(), criteriaFromFlags(cmd), searchFlags.topK)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), search.Results(results))
}

// criteriaFromFlags leaves unset flags as nil constraints.
func criteriaFromFlags(cmd *cobra.Command) core.SearchCriteria {
	var c core.SearchCriteria
	changed := cmd.Flags().Changed
	if changed("budget") {
		c.Budget = core.Ptr(searchFlags.budget)
	}
	if changed("max-distance") {
		c.MaxDistanceMiles = core.Ptr(searchFlags.maxDistance)
	}
	if changed("body-style") {
		c.BodyStyle = core.Ptr(searchFlags.bodyStyle)
	}
	if changed("fuel-type") {
		c.FuelType = core.Ptr(searchFlags.fuelType)
	}
	if changed("make") {
		c.Make = core.Ptr(searchFlags.vehicleMake)
	}
	if changed("model") {
		c.Model = core.Ptr(searchFlags.model)
	}
	if changed("min-year") {
		c.MinYear = core.Ptr(searchFlags.minYear)
	}
	return c
}
