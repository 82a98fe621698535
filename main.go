package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/matscript/cli"
	"github.com/ardnew/matscript/cli/cmd"
	"github.com/ardnew/matscript/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", slog.Any("error", err))

		if snippet := cmd.Snippet(err); snippet != "" {
			fmt.Fprint(os.Stderr, snippet)
		}

		os.Exit(1)
	}
}
