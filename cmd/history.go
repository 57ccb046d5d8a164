package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/timnew/Fuel-price/pkg/fuel"
	"github.com/timnew/Fuel-price/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored price history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		typeFilter, _ := cmd.Flags().GetString("type")
		regionFilter, _ := cmd.Flags().GetString("region")
		if typeFilter != "" {
			if _, ok := fuel.ParseFuelType(typeFilter); !ok {
				return fmt.Errorf("unknown fuel type: %s", typeFilter)
			}
		}
		if regionFilter != "" {
			if _, ok := fuel.ParseRegion(regionFilter); !ok {
				return fmt.Errorf("unknown region: %s", regionFilter)
			}
		}

		dbPath := viper.GetString("dbpath")
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("database not found: %s", dbPath)
		}
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		keys, err := db.Keys(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if typeFilter != "" && !strings.EqualFold(typeFilter, string(key.FuelType)) {
				continue
			}
			if regionFilter != "" && !strings.EqualFold(regionFilter, string(key.Region)) {
				continue
			}
			points, err := db.Get(ctx, key)
			if err != nil {
				return err
			}
			for _, p := range points {
				ts := p.Timestamp.Format("2006-01-02 15:04:05")
				fmt.Printf("%s  %-6s  %-4s  %6.1f  %s %s\n",
					ts, key.FuelType, key.Region, p.Price, p.Suburb, p.State)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("type", "", "Only show history for this fuel type")
	historyCmd.Flags().String("region", "", "Only show history for this region")
}
