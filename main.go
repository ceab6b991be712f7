package main

import (
	"context"
	"fmt"
	"os"

	"content-catalog/cmd"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:     "catalog",
		Version:  version,
		Usage:    "Content catalog API: titles, reviews and comments",
		Commands: cmd.Commands(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
