// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/pathkey"
)

type hashResult struct {
	Path string      `json:"path"`
	Key  pathkey.Key `json:"key"`
}

func hashCommand(streams Streams) *cli.Command {
	var outputJSON bool

	return &cli.Command{
		Name:    "hash",
		Summary: "Print the archive key of each path",
		Description: `Print the key under which each logical path is indexed. Paths are
hashed exactly as given: no decoding or normalization is applied.`,
		Args:  "PATH...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "veloxio hash PATH..."); err != nil {
				return err
			}
			results := make([]hashResult, len(args))
			for i, path := range args {
				results[i] = hashResult{Path: path, Key: pathkey.Hash(path)}
			}
			if outputJSON {
				return cli.WriteJSON(streams.Stdout, results)
			}
			for _, result := range results {
				fmt.Fprintf(streams.Stdout, "%s  %s\n", result.Key, result.Path)
			}
			return nil
		},
	}
}
