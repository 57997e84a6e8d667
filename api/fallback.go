package api

// This file contains the sample dataset served in demo mode and the
// synthesis of runs when the service cannot start one.

import (
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/flinketl/etldash/model"
	"github.com/google/uuid"
)

// TimeLayout is the timestamp layout used by the service.
const TimeLayout = "2006-01-02 15:04:05"

// Fallback returns a fresh copy of the sample test runs.
func Fallback() []model.TestRun {
	return []model.TestRun{
		{
			ID:                "test-001",
			TestCreationTime:  "2024-01-15 09:30:00",
			FlinkJobStartTime: "2024-01-15 09:32:00",
			FlinkJobEndTime:   "2024-01-15 09:39:00",
			ImageTag:          "1.0.0",
			NumberOfMessages:  600000,
			CurrentLag:        30000,
			Files: []model.TestFile{
				{FileName: "compacted-part-0", CreationTime: "2024-01-15 09:33:30", Size: 4545454},
				{FileName: "compacted-part-1", CreationTime: "2024-01-15 09:34:15", Size: 3821903},
			},
			Logs: []string{
				"2024-01-15 09:31:00: starting flink e2e",
				"2024-01-15 09:31:30: populatingTopic with messages",
				"2024-01-15 09:32:00: deploying flink deployment",
				"2024-01-15 09:32:00: consuming messages",
				"2024-01-15 09:39:00: test completed successfully",
			},
			Assertions: []model.TestAssertion{
				{Name: "compacted-part-0", Status: model.OutcomePassed},
				{Name: "message-count-validation", Status: model.OutcomePassed},
			},
			TestStatus: model.OutcomePassed,
			Status:     model.StatusFinished,
		},
		{
			ID:                "test-002",
			TestCreationTime:  "2024-01-15 10:15:00",
			FlinkJobStartTime: "2024-01-15 10:17:00",
			FlinkJobEndTime:   "2024-01-15 10:19:45",
			ImageTag:          "1.1.2",
			NumberOfMessages:  250000,
			CurrentLag:        0,
			Files:             []model.TestFile{},
			Logs: []string{
				"2024-01-15 10:16:00: starting flink e2e",
				"2024-01-15 10:16:30: populatingTopic with messages",
				"2024-01-15 10:17:00: deploying flink deployment",
				"2024-01-15 10:17:30: consuming messages",
				"2024-01-15 10:19:15: ERROR: connection timeout to external service",
				"2024-01-15 10:19:45: test failed due to timeout",
			},
			Assertions: []model.TestAssertion{
				{Name: "external-service-connection", Status: model.OutcomeFailed},
			},
			TestStatus: model.OutcomeFailed,
			Status:     model.StatusFinished,
		},
		{
			ID:                "test-003",
			TestCreationTime:  "2024-01-15 11:00:00",
			FlinkJobStartTime: "2024-01-15 11:02:00",
			ImageTag:          "2.0.0-beta",
			NumberOfMessages:  1000000,
			CurrentLag:        15000,
			Files: []model.TestFile{
				{FileName: "compacted-part-0", CreationTime: "2024-01-15 11:03:45", Size: 2341234},
			},
			Logs: []string{
				"2024-01-15 11:01:00: starting flink e2e",
				"2024-01-15 11:01:30: populatingTopic with messages",
				"2024-01-15 11:02:00: deploying flink deployment",
				"2024-01-15 11:02:30: consuming messages",
				"2024-01-15 11:05:00: processing ongoing... current lag: 15000",
			},
			Assertions: []model.TestAssertion{},
			TestStatus: model.OutcomeRunning,
			Status:     model.StatusRunning,
		},
	}
}

// synthesize builds the record returned when a run cannot be started
// remotely in demo mode.
func (c *Client) synthesize(req model.CreateTestRequest) model.TestRun {
	now := c.now().Format(TimeLayout)
	return model.TestRun{
		ID:                "test-" + uuid.NewString(),
		TestName:          req.TestName,
		ImageTag:          req.ImageTag,
		TestCreationTime:  now,
		FlinkJobStartTime: now,
		NumberOfMessages:  req.NumberOfMessages,
		Files:             []model.TestFile{},
		Logs: []string{
			fmt.Sprintf("%s: starting flink e2e", now),
			fmt.Sprintf("%s: populatingTopic with messages", now),
		},
		Assertions: []model.TestAssertion{},
		TestStatus: model.OutcomeRunning,
		Status:     model.StatusRunning,
	}
}

// CurlCommand returns a shell command equivalent to CreateRun.
func (c *Client) CurlCommand(req model.CreateTestRequest) string {
	parts := []string{"curl", "-X", "POST", "-H", "Content-Type: application/json", c.CreateURL(req)}
	for i, p := range parts {
		parts[i] = shellescape.Quote(p)
	}
	return strings.Join(parts, " ")
}

func cloneRuns(runs []model.TestRun) []model.TestRun {
	out := make([]model.TestRun, len(runs))
	for i, run := range runs {
		out[i] = run.Clone()
	}
	return out
}
