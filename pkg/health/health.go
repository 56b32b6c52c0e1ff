// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package health defines the payload served by a graphdl server's health
// endpoint and read back by clients.
package health

import "time"

// StatusOK is reported while the server is accepting requests.
const StatusOK = "ok"

// Report is a point-in-time snapshot of server health, safe to serialize
// to JSON.
type Report struct {
	Status        string    `json:"status" example:"ok" doc:"Health status"`
	Version       string    `json:"version" doc:"Server version"`
	StartedAt     time.Time `json:"startedAt" doc:"Time the server was created"`
	UptimeSeconds int64     `json:"uptimeSeconds" doc:"Whole seconds since startedAt"`
}

// NewReport builds an ok report for a server started at started.
func NewReport(version string, started, now time.Time) Report {
	up := now.Sub(started)
	if up < 0 {
		up = 0
	}
	return Report{
		Status:        StatusOK,
		Version:       version,
		StartedAt:     started.UTC(),
		UptimeSeconds: int64(up / time.Second),
	}
}

// Uptime returns UptimeSeconds as a duration.
func (r Report) Uptime() time.Duration {
	return time.Duration(r.UptimeSeconds) * time.Second
}
