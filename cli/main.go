package main

import (
	"os"

	"github.com/thomurie/jobly/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
