package main

import (
	"os"

	"github.com/coolteam/cardshop/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
