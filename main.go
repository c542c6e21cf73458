package main

import (
	"fmt"
	"os"

	"pagebuilder/cmd"
)

// Set by goreleaser/ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pagebuilder:", err)
		os.Exit(1)
	}
}
