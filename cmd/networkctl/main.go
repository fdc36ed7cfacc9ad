// Package main is the entry point for the networkctl operator CLI.
package main

import (
	"fmt"
	"os"

	"koppara_backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
