// Package main is the entry point for the marketctl CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/marketplace/cmd/marketctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
