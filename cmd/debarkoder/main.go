package main

import (
	"os"

	"github.com/MeKo-Tech/debarkoder/cmd/debarkoder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
