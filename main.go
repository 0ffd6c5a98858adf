package main

import (
	"os"

	"github.com/Lixo88/Subtitleler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
