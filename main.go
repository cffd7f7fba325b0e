package main

import (
	"os"

	"github.com/penwyp/go-hwlog-viewer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
