// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/cmd/veloxio/commands"
)

func main() {
	err := run(os.Args[1:])
	if err == nil {
		return
	}
	// Commands that report their own outcome (get on a missing path)
	// return an ExitError; don't print a redundant line.
	if !cli.Silent(err) {
		fmt.Fprintf(os.Stderr, "veloxio: %v\n", err)
	}
	os.Exit(cli.ExitCodeOf(err))
}

func run(args []string) error {
	return commands.Root(commands.StandardStreams()).Execute(args)
}
