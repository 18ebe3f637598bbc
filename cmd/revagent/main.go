// Package main provides the revagent command.
package main

import (
	"os"

	"github.com/leapstack-labs/revagent/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
