package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/signlab-io/gesturetrain/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	// fang wraps cobra execution with styled help, --version, shell
	// completions, and manpage generation.
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
