package main

import (
	"os"

	"github.com/slotplanner/slotplanner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
