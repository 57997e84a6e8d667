package view

import (
	"sort"
	"time"

	"github.com/flinketl/etldash/model"
)

// SortTime returns the time a run is ordered by: creation time, or job
// start when creation is missing.
func SortTime(run model.TestRun) (time.Time, bool) {
	if t, ok := ParseTime(run.TestCreationTime); ok {
		return t, true
	}
	return ParseTime(run.FlinkJobStartTime)
}

// SortRuns returns a copy of runs ordered newest first. Runs without a
// usable timestamp go last. Ties keep their input order.
func SortRuns(runs []model.TestRun) []model.TestRun {
	type keyed struct {
		run   model.TestRun
		t     time.Time
		valid bool
	}

	items := make([]keyed, len(runs))
	for i, run := range runs {
		t, ok := SortTime(run)
		items[i] = keyed{run: run, t: t, valid: ok}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.valid != b.valid {
			return a.valid
		}
		return a.t.After(b.t)
	})

	out := make([]model.TestRun, len(items))
	for i, it := range items {
		out[i] = it.run
	}
	return out
}
