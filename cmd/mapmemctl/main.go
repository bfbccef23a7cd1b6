// Package main provides the entry point for the mapmemctl operator CLI.
package main

import (
	"os"

	"github.com/mapmem/mapmem-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
