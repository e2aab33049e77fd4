package main

// Entry point: runs the cobra command tree.

import (
	"fmt"
	"os"

	"me-linker/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
