// tabtint - Favicon-driven browser tab colouring
//
// tabtint derives an accent colour for every browser tab from its favicon
// and writes the resulting tab and accent styles.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/tabtint/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
