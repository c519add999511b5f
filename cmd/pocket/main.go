package main

import (
	"os"

	"github.com/pocketcode/pocket-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
