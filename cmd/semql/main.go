// Package main provides the semql command-line interface.
package main

import (
	"os"

	"github.com/leapstack-labs/semql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
