// Package main is the entry point for the showbook application.
package main

import (
	"os"

	"github.com/jmylchreest/showbook/cmd/showbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
