// Package main provides the leaprdt command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leaprdt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
