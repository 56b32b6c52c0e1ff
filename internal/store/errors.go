// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// KeyNotFound returns the error backends report from Get for a missing key.
// Check it with graphdlerr.IsNotFound.
func KeyNotFound(key string) error {
	return graphdlerr.New(graphdlerr.CodeStoreBackendKeyNotFound, "key "+key+" not found",
		graphdlerr.Field("key", key))
}

// PrefixEnd returns the smallest string greater than every string with the
// given prefix, or "" when no such bound exists (empty or all-0xff prefix).
func PrefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
