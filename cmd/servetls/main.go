// Package main provides the entry point for servetls.
//
// servetls serves a directory tree over HTTPS using a PEM certificate and
// key, by default cert.pem and key.pem from the working directory, on
// https://localhost:8080.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/servetls/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
