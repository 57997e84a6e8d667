package cli

// This file contains the list and summary commands.

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flinketl/etldash/dashboard"
	"github.com/flinketl/etldash/view"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	filterStatus := strings.ToUpper(strings.TrimSpace(ctx.String("status")))
	limit := ctx.Int("limit")

	listing, err := a.service.Runs(ctx.Context)
	if err != nil {
		return fmt.Errorf("failed to load test runs: %w", err)
	}
	a.saveSnapshot(ctx)

	// Apply status filter if specified
	rows := listing.Rows
	if filterStatus != "" {
		var filtered []view.Row
		for _, row := range rows {
			if row.Status.Label == filterStatus {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	total := len(rows)

	// Apply limit
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	if ctx.Bool("json") {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(dashboard.Listing{Rows: rows, Summary: listing.Summary})
	}

	if total == 0 {
		if filterStatus != "" {
			fmt.Fprintf(a.out, "No test runs found with status: %s\n", filterStatus)
		} else {
			fmt.Fprintln(a.out, view.NoRuns)
			fmt.Fprintln(a.out, view.NoRunsHint)
		}
		return nil
	}

	fmt.Fprintf(a.out, "\n=== Test Runs (%d total) ===\n\n", total)
	renderRunsTable(a.out, rows)
	fmt.Fprintln(a.out)
	renderSummary(a.out, listing.Summary)

	fmt.Fprintf(a.out, "\nView details: %s view <ID>\n", AppName)

	return nil
}

func (a *App) summary(ctx *cli.Context) error {
	listing, err := a.service.Runs(ctx.Context)
	if err != nil {
		return fmt.Errorf("failed to load test runs: %w", err)
	}
	renderSummary(a.out, listing.Summary)
	return nil
}

// saveSnapshot stores the listing for later demo use. Listings that may
// contain fallback data are not stored.
func (a *App) saveSnapshot(ctx *cli.Context) {
	if a.snapshot == nil || a.cfg.DemoMode {
		return
	}
	runs, err := a.service.ListRuns(ctx.Context)
	if err != nil {
		return
	}
	if err := a.snapshot.Save(runs); err != nil {
		a.logger.Warn().Err(err).Str("path", a.snapshot.Path()).Msg("Failed to save snapshot")
	}
}
