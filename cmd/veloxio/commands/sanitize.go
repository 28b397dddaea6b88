// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/sanitize"
)

func sanitizeCommand(streams Streams) *cli.Command {
	var root string

	return &cli.Command{
		Name:    "sanitize",
		Summary: "Show where the overlay would look for each path",
		Description: `Decode and validate each path as the disk overlay does, printing the
on-disk location it resolves to or the reason it is rejected. No files
are read. Exits with status 1 if any path is rejected.`,
		Args:  "PATH...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("sanitize", pflag.ContinueOnError)
			flagSet.StringVarP(&root, "root", "r", ".", "overlay root directory")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "veloxio sanitize PATH..."); err != nil {
				return err
			}
			sanitizer := sanitize.New(root)
			rejected := 0
			for _, raw := range args {
				location, err := sanitizer.Sanitize(raw)
				var sanitizeErr *sanitize.Error
				switch {
				case errors.As(err, &sanitizeErr):
					rejected++
					fmt.Fprintf(streams.Stdout, "%s: %v: %s\n", raw, sanitizeErr.Err, sanitizeErr.Reason)
				case err != nil:
					return err
				default:
					fmt.Fprintf(streams.Stdout, "%s -> %s\n", raw, location)
				}
			}
			if rejected > 0 {
				return &cli.ExitError{Code: cli.ExitFailure}
			}
			return nil
		},
	}
}
