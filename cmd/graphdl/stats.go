// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

func newStatsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show entity and relationship counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, logger, err := loadRuntime(cmd, v)
			if err != nil {
				return err
			}
			db, err := OpenStore(cmd.Context(), cfg, v, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			st, err := db.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			renderStats(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "print machine-readable JSON")
	return cmd
}

type countRow struct {
	name  string
	count int
}

// sortedCounts orders rows by count descending, then name.
func sortedCounts(m map[string]int) []countRow {
	rows := make([]countRow, 0, len(m))
	for k, n := range m {
		rows = append(rows, countRow{k, n})
	}
	slices.SortFunc(rows, func(a, b countRow) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return rows
}

func renderStats(w io.Writer, st graphdb.Stats) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("entities:     "), countStyle.Render(fmt.Sprint(st.Entities)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("relationships:"), countStyle.Render(fmt.Sprint(st.Relationships)))

	section := func(title string, m map[string]int) {
		if len(m) == 0 {
			return
		}
		b.WriteString("\n" + headingStyle.Render(title) + "\n")
		rows := sortedCounts(m)
		width := 0
		for _, r := range rows {
			width = max(width, lipgloss.Width(r.name))
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "  %-*s %d\n", width, r.name, r.count)
		}
	}
	section("Types", st.Types)
	section("Predicates", st.Predicates)

	_, _ = io.WriteString(w, b.String())
}
