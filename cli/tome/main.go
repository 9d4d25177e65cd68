package main

import (
	"os"

	tomecmder "github.com/papyrusco/tome/cmd/tome"
)

func main() {
	cmd := tomecmder.NewTomeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
