package view

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flinketl/etldash/model"
)

// Placeholders for missing values.
const (
	NotEnded       = "Not ended yet"
	NoEndTime      = "-"
	NoLogs         = "No logs available"
	NoFiles        = "No output files generated"
	NoAssertions   = "No assertions recorded"
	NoRuns         = "No test runs found"
	NoRunsHint     = `Run "create" to start a new test`
	truncatedIDLen = 8
)

// Row is a run as shown in the list.
type Row struct {
	ID       string             `json:"id"`
	ShortID  string             `json:"shortId"`
	ImageTag string             `json:"imageTag"`
	Status   StatusPresentation `json:"status"`
	Outcome  StatusPresentation `json:"outcome"`
	Start    Timestamp          `json:"start"`
	End      *Timestamp         `json:"end,omitempty"`
	EndLabel string             `json:"endLabel"`
}

// NewRow builds the list projection of a run. The start column shows the
// job start, or creation time when the job has not started.
func NewRow(run model.TestRun, now time.Time) Row {
	start := run.FlinkJobStartTime
	if start == "" {
		start = run.TestCreationTime
	}

	row := Row{
		ID:       run.ID,
		ShortID:  TruncateID(run.ID),
		ImageTag: run.ImageTag,
		Status:   PresentStatus(run.Status),
		Outcome:  PresentOutcome(run.TestStatus),
		Start:    FormatTimestamp(start, now),
		EndLabel: NoEndTime,
	}
	if run.FlinkJobEndTime != "" {
		end := FormatTimestamp(run.FlinkJobEndTime, now)
		row.End = &end
		row.EndLabel = end.Absolute
	}
	return row
}

// Rows sorts runs newest first and projects them.
func Rows(runs []model.TestRun, now time.Time) []Row {
	sorted := SortRuns(runs)
	rows := make([]Row, len(sorted))
	for i, run := range sorted {
		rows[i] = NewRow(run, now)
	}
	return rows
}

// FileItem is an output file as shown in the detail view.
type FileItem struct {
	Name    string    `json:"name"`
	Size    string    `json:"size"`
	Created Timestamp `json:"created"`
}

// AssertionItem is a check as shown in the detail view.
type AssertionItem struct {
	Name   string             `json:"name"`
	Status StatusPresentation `json:"status"`
}

// Detail is a run as shown in the detail view. Empty sections carry an
// explicit message instead of an empty list.
type Detail struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	ImageTag         string             `json:"imageTag"`
	Status           StatusPresentation `json:"status"`
	Outcome          StatusPresentation `json:"outcome"`
	Created          Timestamp          `json:"created"`
	Start            Timestamp          `json:"start"`
	End              *Timestamp         `json:"end,omitempty"`
	EndLabel         string             `json:"endLabel"`
	Duration         string             `json:"duration,omitempty"`
	NumberOfMessages string             `json:"numberOfMessages"`
	CurrentLag       string             `json:"currentLag"`
	Logs             []string           `json:"logs"`
	LogsMessage      string             `json:"logsMessage,omitempty"`
	Files            []FileItem         `json:"files"`
	FilesMessage     string             `json:"filesMessage,omitempty"`
	Assertions       []AssertionItem    `json:"assertions"`
	AssertionsMsg    string             `json:"assertionsMessage,omitempty"`
}

// NewDetail builds the detail projection of a run.
func NewDetail(run model.TestRun, now time.Time) Detail {
	title := run.TestName
	if title == "" {
		title = run.ID
	}

	start := run.FlinkJobStartTime
	if start == "" {
		start = run.TestCreationTime
	}

	d := Detail{
		ID:               run.ID,
		Title:            title,
		ImageTag:         run.ImageTag,
		Status:           PresentStatus(run.Status),
		Outcome:          PresentOutcome(run.TestStatus),
		Created:          FormatTimestamp(run.TestCreationTime, now),
		Start:            FormatTimestamp(start, now),
		EndLabel:         NotEnded,
		NumberOfMessages: humanize.Comma(int64(run.NumberOfMessages)),
		CurrentLag:       humanize.Comma(int64(run.CurrentLag)),
		Logs:             append([]string{}, run.Logs...),
		Files:            make([]FileItem, 0, len(run.Files)),
		Assertions:       make([]AssertionItem, 0, len(run.Assertions)),
	}

	if run.FlinkJobEndTime != "" {
		end := FormatTimestamp(run.FlinkJobEndTime, now)
		d.End = &end
		d.EndLabel = end.Absolute
		if s, ok := ParseTime(start); ok {
			if e, ok := ParseTime(run.FlinkJobEndTime); ok && !e.Before(s) {
				d.Duration = e.Sub(s).String()
			}
		}
	}

	for _, f := range run.Files {
		d.Files = append(d.Files, FileItem{
			Name:    f.FileName,
			Size:    humanize.Bytes(uint64(max(f.Size, 0))),
			Created: FormatTimestamp(f.CreationTime, now),
		})
	}
	for _, a := range run.Assertions {
		d.Assertions = append(d.Assertions, AssertionItem{
			Name:   a.Name,
			Status: PresentOutcome(a.Status),
		})
	}

	if len(d.Logs) == 0 {
		d.LogsMessage = NoLogs
	}
	if len(d.Files) == 0 {
		d.FilesMessage = NoFiles
	}
	if len(d.Assertions) == 0 {
		d.AssertionsMsg = NoAssertions
	}

	return d
}

// LogText joins the log lines for copying or download.
func (d Detail) LogText() string {
	if len(d.Logs) == 0 {
		return ""
	}
	return strings.Join(d.Logs, "\n") + "\n"
}

// LogFileName is the download name of the logs.
func (d Detail) LogFileName() string {
	return d.Title + "-logs.txt"
}

// TruncateID shortens an ID for compact display.
func TruncateID(id string) string {
	r := []rune(id)
	if len(r) > truncatedIDLen {
		return string(r[:truncatedIDLen])
	}
	return id
}
