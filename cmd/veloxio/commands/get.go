// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/config"
	"github.com/veloxio/veloxio/lib/vfs"
)

type getParams struct {
	ConfigPath  string
	OverlayRoot string
	Archives    []string
	Backing     string
	Verbose     bool
}

func getCommand(streams Streams) *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Resolve a logical path and print its contents",
		Description: `Build a provider and write the payload of PATH to stdout.

The provider is configured from --config, else from the file named by
VELOXIO_CONFIG, else from defaults. --overlay-root enables the disk
overlay at the given directory; each --archive is mounted after the
configured archives, in the order given. Exits with status 1 when the
path is not found.`,
		Usage: "veloxio get [--config FILE] [--overlay-root DIR] [--archive FILE]... PATH",
		Environment: []cli.EnvVar{
			{Name: "VELOXIO_CONFIG", Description: "configuration file used when --config is absent"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.StringVarP(&params.ConfigPath, "config", "c", "", "configuration file")
			flagSet.StringVar(&params.OverlayRoot, "overlay-root", "", "serve loose files from this directory first")
			flagSet.StringArrayVarP(&params.Archives, "archive", "a", nil, "archive to mount (repeatable)")
			flagSet.StringVar(&params.Backing, "backing", "", "read strategy: buffered, file or mapped")
			flagSet.BoolVarP(&params.Verbose, "verbose", "v", false, "log mounts and lookups")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Read from two archives; the first one wins on collisions", Command: "veloxio get -a patch.vxa -a base.vxa /index.html"},
			{Description: "Use a configuration file", Command: "veloxio get --config veloxio.yaml /index.html > index.html"},
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "veloxio get [flags] PATH"); err != nil {
				return err
			}
			return runGet(streams, params, args[0])
		},
	}
}

func loadGetConfig(params getParams) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case params.ConfigPath != "":
		cfg, err = config.LoadFile(params.ConfigPath)
	case os.Getenv("VELOXIO_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if params.OverlayRoot != "" {
		cfg.Overlay.Enabled = true
		cfg.Overlay.Root = params.OverlayRoot
	}
	cfg.Archives = append(cfg.Archives, params.Archives...)
	if params.Backing != "" {
		cfg.Backing = params.Backing
	}
	if params.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runGet(streams Streams, params getParams, path string) error {
	cfg, err := loadGetConfig(params)
	if err != nil {
		return err
	}

	logger := cli.NewCommandLogger(streams.Stderr, cfg.SlogLevel()).With("command", "get")
	provider, err := vfs.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	data, err := provider.Get(path)
	if errors.Is(err, vfs.ErrNotFound) {
		fmt.Fprintf(streams.Stderr, "veloxio: %s: not found\n", path)
		return &cli.ExitError{Code: cli.ExitFailure}
	}
	if err != nil {
		return err
	}

	_, err = streams.Stdout.Write(data)
	return err
}
