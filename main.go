package main

import (
	"context"
	"os"

	"github.com/bclibraries/manifester/cmd"
	"github.com/charmbracelet/fang"
)

const version = "0.2.0"

func main() {
	root := cmd.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
