// Copyright 2026 The Veloxio Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(darwin || linux)

package archive

func openMapped(path string) (DataSource, error) {
	source, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return source, nil
}
