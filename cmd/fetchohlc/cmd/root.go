package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fetchohlc",
	Short: "Collect completed OHLC candles from a MetaTrader 5 terminal into SQLite",
	Long: `fetchohlc polls a locally running MetaTrader 5 terminal for OHLC candle
data and persists completed periods into a SQLite database.

Each granularity runs as its own instance with its own database file:
  fetchohlc daily     one candle per calendar day
  fetchohlc minutes   one candle per minute

Both instances backfill history at startup, then wake shortly after every
period boundary to store the just-closed candle. Re-observed candles are
skipped by their period-start primary key.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
