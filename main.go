package main

import (
	"os"

	"github.com/sjkxq/gofind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
