// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Veloxio's standard CBOR encoding
// configuration.
//
// JSON is used for human-facing output (the inspect command's --format
// json). CBOR is used when archive listings are consumed by other
// tools: it is compact and the encoding is deterministic, so two
// listings of the same archive compare byte-for-byte.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types implementing encoding.TextMarshaler (pathkey.Key) encode as
// text strings, matching their JSON form. fxamacker/cbor falls back to
// `json` struct tags when `cbor` tags are absent, so a single `json`
// tag names a field in both formats.
package codec
