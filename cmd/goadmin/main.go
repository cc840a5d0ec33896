// Package main provides the goadmin CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/goadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
