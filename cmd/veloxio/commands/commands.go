// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the veloxio command tree.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/version"
)

// Streams are the standard streams commands write to. Tests substitute
// buffers.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StandardStreams returns the process's stdout and stderr.
func StandardStreams() Streams {
	return Streams{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (s Streams) logger(verbose bool, command string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return cli.NewCommandLogger(s.Stderr, level).With("command", command)
}

// Root builds the complete command tree.
func Root(streams Streams) *cli.Command {
	var showVersion bool

	root := &cli.Command{
		Name: "veloxio",
		Description: `Veloxio: read-only virtual filesystem over packed archives.

Pack directories into indexed archives, inspect them, and resolve
logical paths the way a running provider does: an optional disk
overlay first, then mounted archives in mount order.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("veloxio", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information")
			return flagSet
		},
		HelpOutput: streams.Stderr,
		Environment: []cli.EnvVar{
			{Name: "VELOXIO_CONFIG", Description: "configuration file read by get when --config is absent"},
		},
		Subcommands: []*cli.Command{
			packCommand(streams),
			inspectCommand(streams),
			getCommand(streams),
			hashCommand(streams),
			sanitizeCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(streams.Stdout, "veloxio %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Pack a directory into a compressed archive",
				Command:     "veloxio pack --output assets.vxa ./assets",
			},
			{
				Description: "List an archive's entries",
				Command:     "veloxio inspect assets.vxa",
			},
			{
				Description: "Resolve a path with a loose-file overlay in front of the archive",
				Command:     "veloxio get --overlay-root ./assets --archive assets.vxa /index.html",
			},
		},
	}

	root.Run = func(args []string) error {
		if showVersion {
			fmt.Fprintf(streams.Stdout, "veloxio %s\n", version.Info())
			return nil
		}
		root.PrintHelp(streams.Stderr)
		return cli.Usagef("subcommand required")
	}
	return root
}

// requireArgs returns a usage error unless args has at least minimum
// positional arguments.
func requireArgs(args []string, minimum int, usage string) error {
	if len(args) < minimum {
		return cli.Usagef("usage: %s", usage)
	}
	return nil
}
