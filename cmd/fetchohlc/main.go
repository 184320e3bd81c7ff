package main

import (
	"os"

	"github.com/Fasterbrick/FetchOHLCMT5/cmd/fetchohlc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
