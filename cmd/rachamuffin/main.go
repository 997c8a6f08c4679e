// Package main is the single-binary entrypoint for Rachamuffin.
// Rachamuffin tracks one daily mission and turns it into a streak game.
package main

import "github.com/rachamuffin/rachamuffin/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
