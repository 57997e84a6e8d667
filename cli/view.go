package cli

// This file contains the view command for displaying a single test run.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/flinketl/etldash/api"
	"github.com/flinketl/etldash/model"
	"github.com/flinketl/etldash/view"
	"github.com/urfave/cli/v2"
)

var errAmbiguous = errors.New("ambiguous ID prefix")

type viewOptions struct {
	json     bool
	saveLogs string
}

func removeFirstDashDash(in []string) []string {
	if len(in) > 0 && in[0] == "--" {
		return in[1:]
	}
	return in
}

// isIndex reports whether arg is "0" or a negative integer.
func isIndex(arg string) bool {
	n, err := strconv.ParseInt(arg, 10, 64)
	return err == nil && n <= 0
}

func parseViewArgs(in []string) (idArg string, opts viewOptions, err error) {
	idArg = "0"
	in = removeFirstDashDash(in)

	// The first argument is the ID/index unless it looks like an option.
	// A negative index is "-" followed by only digits (e.g. "-1", "-2").
	if len(in) > 0 && (!strings.HasPrefix(in[0], "-") || isIndex(in[0])) {
		idArg = in[0]
		in = in[1:]
	}

	for i := 0; i < len(in); i++ {
		arg := in[i]
		switch {
		case arg == "--":
			continue
		case arg == "--json" || arg == "-json":
			opts.json = true
		case arg == "--save-logs" || arg == "-save-logs":
			if i+1 >= len(in) {
				return "", viewOptions{}, fmt.Errorf("%s requires a file name", arg)
			}
			i++
			opts.saveLogs = in[i]
		case strings.HasPrefix(arg, "--save-logs="):
			opts.saveLogs = strings.TrimPrefix(arg, "--save-logs=")
		default:
			return "", viewOptions{}, fmt.Errorf("unknown argument: %s", arg)
		}
	}

	return idArg, opts, nil
}

func (a *App) view(ctx *cli.Context) error {
	arg, opts, err := parseViewArgs(ctx.Args().Slice())
	if err != nil {
		return err
	}

	id, err := a.resolveRunID(ctx, arg)
	if err != nil {
		return err
	}

	detail, err := a.service.Run(ctx.Context, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("no test run found with ID: %s", id)
		}
		return fmt.Errorf("failed to load test run %s: %w", id, err)
	}

	if opts.saveLogs != "" {
		if err := os.WriteFile(opts.saveLogs, []byte(detail.LogText()), 0644); err != nil {
			return fmt.Errorf("failed to write logs: %w", err)
		}
		a.logger.Info().Str("file", opts.saveLogs).Int("lines", len(detail.Logs)).Msg("Saved logs")
	}

	if opts.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	a.displayDetail(detail)
	return nil
}

// resolveRunID turns an index (0 newest, -1 second newest, ...) or an ID
// prefix into a run ID. An ID missing from the listing is passed through
// so the service gets the final say.
func (a *App) resolveRunID(ctx *cli.Context, arg string) (string, error) {
	runs, err := a.service.ListRuns(ctx.Context)
	if err != nil {
		if isIndex(arg) {
			return "", fmt.Errorf("failed to load test runs: %w", err)
		}
		a.logger.Debug().Err(err).Msg("Listing unavailable, looking up ID directly")
		return arg, nil
	}

	id, err := resolveRunID(runs, arg)
	if err != nil && !isIndex(arg) && !errors.Is(err, errAmbiguous) {
		return arg, nil
	}
	return id, err
}

// resolveRunID expects runs sorted newest first.
func resolveRunID(runs []model.TestRun, arg string) (string, error) {
	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			// Positive integers are not allowed
			return "", fmt.Errorf("invalid index: %s (use 0 for newest, -1 for second newest, -2 for third newest, etc.)", arg)
		}
		if len(runs) == 0 {
			return "", fmt.Errorf("no test runs found")
		}
		index := int(-parsed)
		if index >= len(runs) {
			return "", fmt.Errorf("index %s out of range (only %d test runs)", arg, len(runs))
		}
		return runs[index].ID, nil
	}

	// Exact match first, then unique prefix
	prefix := strings.ToLower(arg)
	var matches []string
	for _, run := range runs {
		if strings.EqualFold(run.ID, arg) {
			return run.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(run.ID), prefix) {
			matches = append(matches, run.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no test run found matching ID: %s", arg)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: %s matches %s", errAmbiguous, arg, strings.Join(matches, ", "))
}

func (a *App) displayDetail(d view.Detail) {
	w := a.out

	// Print header
	fmt.Fprintf(w, "=== Test Run: %s ===\n", d.Title)
	if d.Title != d.ID {
		fmt.Fprintf(w, "ID: %s\n", d.ID)
	}
	fmt.Fprintf(w, "Image: %s\n", d.ImageTag)
	fmt.Fprintf(w, "Status: %s\n", styleStatus(d.Status))
	fmt.Fprintf(w, "Result: %s\n", styleStatus(d.Outcome))
	fmt.Fprintf(w, "Created: %s (%s)\n", d.Created.Absolute, d.Created.Relative)
	fmt.Fprintf(w, "Start Time: %s (%s)\n", d.Start.Absolute, d.Start.Relative)
	if d.End != nil {
		fmt.Fprintf(w, "End Time: %s (%s)\n", d.End.Absolute, d.End.Relative)
	} else {
		fmt.Fprintf(w, "End Time: %s\n", d.EndLabel)
	}
	if d.Duration != "" {
		fmt.Fprintf(w, "Duration: %s\n", d.Duration)
	}
	fmt.Fprintf(w, "Messages: %s\n", d.NumberOfMessages)
	fmt.Fprintf(w, "Current Lag: %s\n", d.CurrentLag)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "--- Assertions (%d) ---\n", len(d.Assertions))
	if d.AssertionsMsg != "" {
		fmt.Fprintln(w, d.AssertionsMsg)
	}
	for _, as := range d.Assertions {
		fmt.Fprintf(w, "%s  %s\n", styleStatus(as.Status), as.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "--- Output Files (%d) ---\n", len(d.Files))
	if d.FilesMessage != "" {
		fmt.Fprintln(w, d.FilesMessage)
	}
	for _, f := range d.Files {
		fmt.Fprintf(w, "%s  %s  %s\n", f.Name, f.Size, f.Created.Absolute)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "--- Logs (%d) ---\n", len(d.Logs))
	if d.LogsMessage != "" {
		fmt.Fprintln(w, d.LogsMessage)
	}
	for _, line := range d.Logs {
		fmt.Fprintln(w, line)
	}
}
