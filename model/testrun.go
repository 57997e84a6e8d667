package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned when a request is missing required input.
var ErrValidation = errors.New("validation failed")

// Status is the execution lifecycle state of a test run
type Status string

const (
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusFailed   Status = "FAILED"
	// StatusSuccess is reported by some service versions instead of FINISHED
	StatusSuccess Status = "SUCCESS"
)

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinished, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Outcome is the pass/fail verdict of a test run, orthogonal to Status
type Outcome string

const (
	OutcomePassed  Outcome = "PASSED"
	OutcomeFailed  Outcome = "FAILED"
	OutcomeRunning Outcome = "RUNNING"
)

// TestRun represents a single execution of a pipeline test as reported by
// the test service. Timestamps are kept verbatim; parsing them is left to
// the view layer so a malformed value never breaks decoding.
type TestRun struct {
	// Opaque unique ID assigned by the service
	ID string `json:"id"`
	// Human-assigned test name
	TestName string `json:"testName,omitempty"`
	// Image tag under test
	ImageTag string `json:"imageTag"`
	// Time the test was created
	TestCreationTime string `json:"testCreationTime"`
	// Time the Flink job started
	FlinkJobStartTime string `json:"flinkJobStartTime,omitempty"`
	// Time the Flink job ended, empty while running
	FlinkJobEndTime string `json:"flinkJobEndTime,omitempty"`
	// Number of messages requested
	NumberOfMessages int `json:"numberOfMessages"`
	// Current consumer lag
	CurrentLag int `json:"currentLag"`
	// Output files produced by the job
	Files []TestFile `json:"files"`
	// Log lines in emission order
	Logs []string `json:"logs"`
	// Named checks evaluated against the run
	Assertions []TestAssertion `json:"assertions"`
	// Pass/fail verdict
	TestStatus Outcome `json:"testStatus"`
	// Execution state
	Status Status `json:"status"`
}

// TestFile is an output artifact produced by the job
type TestFile struct {
	FileName     string `json:"fileName"`
	CreationTime string `json:"creationTime"`
	Size         int64  `json:"size"`
}

// TestAssertion is a named pass/fail check
type TestAssertion struct {
	Name   string  `json:"name"`
	Status Outcome `json:"status"`
}

// Clone returns a deep copy so callers can hand out records without
// sharing backing arrays.
func (r TestRun) Clone() TestRun {
	out := r
	out.Files = cloneSlice(r.Files)
	out.Logs = cloneSlice(r.Logs)
	out.Assertions = cloneSlice(r.Assertions)
	return out
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// CreateTestRequest contains the input needed to start a test run
type CreateTestRequest struct {
	// Image tag to test (required)
	ImageTag string `json:"imageTag"`
	// Optional test name
	TestName string `json:"testName,omitempty"`
	// Optional number of messages to populate the topic with
	NumberOfMessages int `json:"numberOfMessages,omitempty"`
}

// Validate checks required fields. The returned error wraps ErrValidation.
func (r CreateTestRequest) Validate() error {
	if strings.TrimSpace(r.ImageTag) == "" {
		return fmt.Errorf("%w: image tag is required", ErrValidation)
	}
	if r.NumberOfMessages < 0 {
		return fmt.Errorf("%w: number of messages must not be negative", ErrValidation)
	}
	return nil
}
