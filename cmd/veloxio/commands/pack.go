// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/archive"
	"github.com/veloxio/veloxio/lib/compress"
)

type packParams struct {
	Output        string
	FormatVersion uint8
	Compression   string
	Verbose       bool
}

func packCommand(streams Streams) *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Pack a directory into an archive",
		Description: `Pack every regular file under DIR into a new archive.

Each file is stored under the key of "/" followed by its slash-separated
path relative to DIR, so "DIR/img/logo.png" is served as "/img/logo.png".
Format version 2 (the default) compresses entries and records checksums;
version 1 stores raw payloads.`,
		Usage: "veloxio pack --output FILE [--version 1|2] [--compression auto|none|lz4|zstd] DIR",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.StringVarP(&params.Output, "output", "o", "", "archive file to write (required)")
			flagSet.Uint8Var(&params.FormatVersion, "version", archive.Version2, "archive format version (1 or 2)")
			flagSet.StringVar(&params.Compression, "compression", "auto", "entry compression: auto, none, lz4 or zstd")
			flagSet.BoolVarP(&params.Verbose, "verbose", "v", false, "log every packed file")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Pack with automatic codec selection", Command: "veloxio pack -o assets.vxa ./assets"},
			{Description: "Pack an uncompressed version 1 archive", Command: "veloxio pack -o legacy.vxa --version 1 ./assets"},
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "veloxio pack --output FILE DIR"); err != nil {
				return err
			}
			if params.Output == "" {
				return fmt.Errorf("--output is required")
			}
			return runPack(streams, params, args[0])
		},
	}
}

func runPack(streams Streams, params packParams, dir string) error {
	logger := streams.logger(params.Verbose, "pack")

	builder, err := archive.NewBuilder(params.FormatVersion)
	if err != nil {
		return err
	}

	auto := params.Compression == "auto"
	var tag compress.Tag
	if !auto {
		tag, err = compress.ParseTag(params.Compression)
		if err != nil {
			return err
		}
	}

	outputAbs, err := filepath.Abs(params.Output)
	if err != nil {
		return err
	}

	var totalSize int64
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		// Never pack the archive being written.
		if abs, err := filepath.Abs(path); err == nil && abs == outputAbs {
			return nil
		}

		relative, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		logical := "/" + filepath.ToSlash(relative)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if auto {
			err = builder.Add(logical, data)
		} else {
			err = builder.AddWith(logical, data, tag)
		}
		if err != nil {
			return err
		}

		totalSize += int64(len(data))
		logger.Debug("packed file", "path", logical, "size", len(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("packing %s: %w", dir, err)
	}

	count := builder.Len()
	written, err := writeArchiveFile(builder, params.Output)
	if err != nil {
		return err
	}

	logger.Info("archive written",
		"archive", params.Output,
		"entries", count,
		"version", params.FormatVersion,
		"input_bytes", totalSize,
		"archive_bytes", written,
	)
	fmt.Fprintf(streams.Stdout, "packed %d files (%d bytes) into %s (%d bytes)\n",
		count, totalSize, params.Output, written)
	return nil
}

// writeArchiveFile flushes builder to a temporary file next to path
// and renames it into place, so readers never observe a partial
// archive.
func writeArchiveFile(builder *archive.Builder, path string) (int64, error) {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	defer os.Remove(temporary.Name())

	written, err := builder.Flush(temporary)
	if err != nil {
		temporary.Close()
		return 0, err
	}
	if err := temporary.Close(); err != nil {
		return 0, fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Chmod(temporary.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("setting archive permissions: %w", err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return 0, fmt.Errorf("installing archive: %w", err)
	}
	return written, nil
}
