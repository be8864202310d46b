package main

import (
	"os"

	"github.com/emberworks/rekindle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
