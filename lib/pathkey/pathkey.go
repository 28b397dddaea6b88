// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

package pathkey

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Key is the archive index key of a logical path.
type Key uint64

// Size is the encoded byte length of a Key.
const Size = 8

// domainKey is the BLAKE3 key for path hashing: the ASCII domain name
// zero-padded to 32 bytes. Changing it invalidates all archives.
var domainKey = [32]byte{
	'v', 'e', 'l', 'o', 'x', 'i', 'o', '.', 'p', 'a', 't', 'h', 'k', 'e', 'y',
}

// Hash returns the key of the logical path exactly as supplied by the
// caller. No decoding or normalization is applied: "/a%20b" and
// "/a b" are different keys.
func Hash(path string) Key {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes long.
		panic("pathkey: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(path))

	var digest [32]byte
	hasher.Sum(digest[:0])
	return Key(binary.LittleEndian.Uint64(digest[:Size]))
}

// String returns the key as 16 lowercase hex digits.
func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// Parse parses the 16 hex digit form produced by [Key.String].
func Parse(s string) (Key, error) {
	if len(s) != 2*Size {
		return 0, fmt.Errorf("path key %q is %d characters, want %d", s, len(s), 2*Size)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing path key: %w", err)
	}
	return Key(binary.BigEndian.Uint64(decoded)), nil
}

// MarshalText encodes the key in its hex form, so JSON and CBOR
// listings show the same digits as [Key.String].
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes the hex form produced by [Key.MarshalText].
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
