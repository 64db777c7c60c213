package main

import (
	"os"

	"github.com/oberon-games/waterfall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
