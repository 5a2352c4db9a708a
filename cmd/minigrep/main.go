// Package main is the entry point for the minigrep tool.
// minigrep prints the lines of a file that contain a query string.
package main

import (
	"os"

	"github.com/f4ah6o/minigrep-go/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args, os.Stdout, os.Stderr, os.LookupEnv))
}
