// Package main is the entry point for the listing migrator.
package main

import (
	"os"

	"github.com/rgoodwin/ebay-listing-migrator/cmd/listing-migrator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
