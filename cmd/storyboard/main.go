package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storyboard/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps error classes to distinct process exit statuses.
func exitCode(err error) int {
	switch services.Kind(err) {
	case "validation":
		return 2
	case "not_found", "no_project":
		return 3
	case "format":
		return 4
	default:
		return 1
	}
}
