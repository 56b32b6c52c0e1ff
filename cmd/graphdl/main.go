// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"os"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Exit statuses. Scripts driving import can tell bad input from a broken
// environment.
const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if graphdlerr.IsInvalidInput(err) {
		return exitInvalidInput
	}
	return exitFailure
}
