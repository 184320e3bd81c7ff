package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Fasterbrick/FetchOHLCMT5/config"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Collect completed daily candles",
	Long: `Collect completed daily candles into a local SQLite database.

Backfills 5000 days of history at startup, then stores the just-closed
candle shortly after every midnight. All settings are compiled-in defaults;
pass --config to override them from a YAML or JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollector(config.Daily(), dailyConfigPath)
	},
}

var dailyConfigPath string

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().StringVarP(&dailyConfigPath, "config", "f", "", "optional config file (YAML or JSON)")
}
