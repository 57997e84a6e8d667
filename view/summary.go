package view

import "github.com/flinketl/etldash/model"

// Summary holds the dashboard counters. Every run lands in exactly one of
// Running, Passed, Failed or Unclassified.
type Summary struct {
	Total        int `json:"total"`
	Running      int `json:"running"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Unclassified int `json:"unclassified"`
}

// Class is the counter a run contributes to.
type Class int

const (
	ClassUnclassified Class = iota
	ClassRunning
	ClassPassed
	ClassFailed
)

// Classify picks the counter for a run. A running execution wins over any
// reported verdict.
func Classify(run model.TestRun) Class {
	switch {
	case run.Status == model.StatusRunning:
		return ClassRunning
	case run.TestStatus == model.OutcomePassed:
		return ClassPassed
	case run.TestStatus == model.OutcomeFailed, run.Status == model.StatusFailed:
		return ClassFailed
	}
	return ClassUnclassified
}

// Summarize counts runs per class.
func Summarize(runs []model.TestRun) Summary {
	s := Summary{Total: len(runs)}
	for _, run := range runs {
		switch Classify(run) {
		case ClassRunning:
			s.Running++
		case ClassPassed:
			s.Passed++
		case ClassFailed:
			s.Failed++
		default:
			s.Unclassified++
		}
	}
	return s
}
