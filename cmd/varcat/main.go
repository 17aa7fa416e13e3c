// Package main is the varcat command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/varcat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
