// Package main provides the entry point for the cardvault CLI tool.
package main

import (
	"github.com/sobani/cardvault/cmd/cardvault/cmd"
)

func main() {
	cmd.Execute()
}
