// Package main provides the entry point for the remotekit CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kbukum/remotekit/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, "Error: "+exitErr.Error())
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
