package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/timnew/Fuel-price/internal/utils"
	"github.com/timnew/Fuel-price/pkg/config"
	"github.com/timnew/Fuel-price/pkg/feed"
	"github.com/timnew/Fuel-price/pkg/fuel"
	"github.com/timnew/Fuel-price/pkg/report"
	"github.com/timnew/Fuel-price/pkg/storage"
)

// reportCmd fetches the feed, updates history and prints the report set
// without emailing anyone. Useful for cron debugging.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch the feed and print the report set, no email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, subErrs := config.Load(viper.GetViper())
		for _, err := range subErrs {
			utils.Log.Warnf("Skipping subscriber: %v", err)
		}

		now := time.Now().UTC()
		observations, err := feed.NewClient(settings.FeedURL).Fetch(now)
		if err != nil {
			return err
		}

		db, err := storage.Open(settings.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		builder := report.NewBuilder(db, settings.AlertThreshold, settings.HistoryLimit)
		set, buildErrs := builder.BuildSet(cmd.Context(), observations)
		for _, err := range buildErrs {
			utils.Log.Errorf("Report skipped: %v", err)
		}

		printReportSet(set)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func printReportSet(set report.Set) {
	for _, fuelType := range fuel.Types() {
		for _, region := range fuel.Regions() {
			r, ok := set[fuel.Key{FuelType: fuelType, Region: region}]
			if !ok {
				continue
			}
			best := "n/a"
			if len(r.LatestPrices) > 0 {
				best = fmt.Sprintf("%.1f", r.LatestPrices[0].Price)
			}
			fmt.Printf("%-6s  %-4s  %-10s  delta=%+.2f  best=%s\n",
				r.FuelType, r.Region, r.Trend, r.PriceDelta, best)
		}
	}
}
