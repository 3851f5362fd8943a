package main

import (
	"os"

	"github.com/workdeck/workdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
