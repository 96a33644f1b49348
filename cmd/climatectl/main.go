package main

import (
	"os"

	"climate-api/cmd/climatectl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
