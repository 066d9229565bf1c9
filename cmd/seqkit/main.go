package main

import (
	"os"

	"github.com/kbukum/seqkit/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
