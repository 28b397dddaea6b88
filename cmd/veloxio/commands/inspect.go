// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/veloxio/veloxio/cmd/veloxio/cli"
	"github.com/veloxio/veloxio/lib/archive"
	"github.com/veloxio/veloxio/lib/binhash"
	"github.com/veloxio/veloxio/lib/codec"
	"github.com/veloxio/veloxio/lib/pathkey"
)

type inspectParams struct {
	Format  string
	Backing string
	Verify  bool
}

// archiveListing is the machine-readable form of an archive's header
// and entry table.
type archiveListing struct {
	Path      string         `json:"path"`
	Version   uint8          `json:"version"`
	Size      int64          `json:"size"`
	Digest    string         `json:"digest"`
	DataStart int64          `json:"data_start"`
	Entries   []entryListing `json:"entries"`
}

type entryListing struct {
	Key         pathkey.Key `json:"key"`
	Offset      uint64      `json:"offset"`
	Length      uint64      `json:"length"`
	Size        uint64      `json:"size"`
	Compression string      `json:"compression,omitempty"`
	Checksum    string      `json:"checksum,omitempty"`
}

func inspectCommand(streams Streams) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show an archive's header and entries",
		Description: `Load an archive with full validation and print its header and
entry table, ordered by data offset. With --verify every entry is
read back, which decompresses version 2 payloads and checks their
checksums.`,
		Args:  "ARCHIVE",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.StringVarP(&params.Format, "format", "f", "text", "output format: text, json or cbor")
			flagSet.StringVar(&params.Backing, "backing", "file", "read strategy: buffered, file or mapped")
			flagSet.BoolVar(&params.Verify, "verify", false, "read and verify every entry")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "veloxio inspect ARCHIVE"); err != nil {
				return err
			}
			return runInspect(streams, params, args[0])
		},
	}
}

func runInspect(streams Streams, params inspectParams, path string) error {
	switch params.Format {
	case "text", "json", "cbor":
	default:
		return fmt.Errorf("unknown format %q (want text, json or cbor)", params.Format)
	}

	backing, err := archive.ParseBacking(params.Backing)
	if err != nil {
		return err
	}
	container, err := archive.Load(path, backing)
	if err != nil {
		return err
	}
	defer container.Close()

	digest, err := binhash.HashFile(path)
	if err != nil {
		return err
	}

	listing := archiveListing{
		Path:      path,
		Version:   container.Version(),
		Size:      container.Size(),
		Digest:    binhash.FormatDigest(digest),
		DataStart: container.DataStart(),
		Entries:   []entryListing{},
	}
	for _, entry := range container.Entries() {
		if params.Verify {
			if _, err := archive.ReadEntry(container, entry); err != nil {
				return fmt.Errorf("verifying entry %s: %w", entry.Key, err)
			}
		}
		item := entryListing{
			Key:    entry.Key,
			Offset: entry.Offset,
			Length: entry.Length,
			Size:   entry.Length,
		}
		if container.Version() == archive.Version2 {
			item.Size = entry.Size
			item.Compression = entry.Compression.String()
			item.Checksum = fmt.Sprintf("%016x", entry.Checksum)
		}
		listing.Entries = append(listing.Entries, item)
	}

	switch params.Format {
	case "json":
		return cli.WriteJSON(streams.Stdout, listing)
	case "cbor":
		return codec.NewEncoder(streams.Stdout).Encode(listing)
	default:
		return writeListingText(streams.Stdout, listing)
	}
}

func writeListingText(w io.Writer, listing archiveListing) error {
	fmt.Fprintf(w, "archive:    %s\n", listing.Path)
	fmt.Fprintf(w, "version:    %d\n", listing.Version)
	fmt.Fprintf(w, "size:       %d\n", listing.Size)
	fmt.Fprintf(w, "digest:     %s\n", listing.Digest)
	fmt.Fprintf(w, "data start: %d\n", listing.DataStart)
	fmt.Fprintf(w, "entries:    %d\n", len(listing.Entries))
	if len(listing.Entries) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	if listing.Version == archive.Version1 {
		fmt.Fprintln(tw, "KEY\tOFFSET\tLENGTH")
		for _, entry := range listing.Entries {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", entry.Key, entry.Offset, entry.Length)
		}
	} else {
		fmt.Fprintln(tw, "KEY\tOFFSET\tLENGTH\tSIZE\tCOMPRESSION\tCHECKSUM")
		for _, entry := range listing.Entries {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
				entry.Key, entry.Offset, entry.Length, entry.Size, entry.Compression, entry.Checksum)
		}
	}
	return tw.Flush()
}

