package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/manya9155/Hallucination-Detector/internal/cli"
	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
)

func main() {
	err := cli.Execute()
	switch {
	case err == nil:
		return
	case errors.Is(err, cli.ErrRefuted):
		os.Exit(3)
	case verrors.IsConfig(err):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
