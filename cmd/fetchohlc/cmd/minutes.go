package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Fasterbrick/FetchOHLCMT5/config"
)

var minutesCmd = &cobra.Command{
	Use:   "minutes",
	Short: "Collect completed one-minute candles",
	Long: `Collect completed one-minute candles into a local SQLite database.

Backfills 90000 minutes of history at startup, then stores the just-closed
candle shortly after every minute boundary. All settings are compiled-in
defaults; pass --config to override them from a YAML or JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollector(config.Minutes(), minutesConfigPath)
	},
}

var minutesConfigPath string

func init() {
	rootCmd.AddCommand(minutesCmd)

	minutesCmd.Flags().StringVarP(&minutesConfigPath, "config", "f", "", "optional config file (YAML or JSON)")
}
