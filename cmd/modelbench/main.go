package main

import (
	"os"

	"github.com/modelbench/modelbench/cmd/modelbench/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
