package main

import (
	"os"

	_ "slidedeck/internal/layouts" // Register built-in layouts
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
