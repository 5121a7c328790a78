package main

import (
	"os"

	"github.com/kjk/plainkv/cmd/plainkv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
