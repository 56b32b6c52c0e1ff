// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// defaultHTTPClient is the HTTP client used by commands that talk to a
// running server.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// apiClient provides HTTP access to a running graphdl server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *apiClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		if isDialError(err) {
			return graphdlerr.Wrap(err, graphdlerr.CodeCLIServerDown, "server is not running (connection refused)")
		}
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return graphdlerr.Errorf(graphdlerr.CodeCLISetupFailure, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
