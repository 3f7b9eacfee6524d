package main

import (
	"os"

	"github.com/gnolang/weave/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
