package main

import (
	"os"

	"github.com/quantlab/risknorm/cmd/risknorm/commands"
)

// main is the entry point for the risknorm CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
