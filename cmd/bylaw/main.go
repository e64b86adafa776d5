package main

import (
	"fmt"
	"os"

	"github.com/sadiqawos/toronto2.0/cmd/bylaw/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
