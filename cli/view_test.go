package cli

import (
	"errors"
	"reflect"
	"testing"

	"github.com/flinketl/etldash/model"
)

func TestRemoveFirstDashDash(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "empty slice",
			in:   []string{},
			want: []string{},
		},
		{
			name: "starts with --",
			in:   []string{"--", "--json"},
			want: []string{"--json"},
		},
		{
			name: "no --",
			in:   []string{"test-001", "--json"},
			want: []string{"test-001", "--json"},
		},
		{
			name: "only --",
			in:   []string{"--"},
			want: []string{},
		},
		{
			name: "-- in middle",
			in:   []string{"-1", "--", "--json"},
			want: []string{"-1", "--", "--json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeFirstDashDash(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("removeFirstDashDash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseViewArgs(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		wantID   string
		wantOpts viewOptions
		wantErr  bool
	}{
		{
			name:   "empty args - default to 0",
			in:     []string{},
			wantID: "0",
		},
		{
			name:   "only ID - index 0",
			in:     []string{"0"},
			wantID: "0",
		},
		{
			name:   "only ID - negative index",
			in:     []string{"-1"},
			wantID: "-1",
		},
		{
			name:   "only ID - run id",
			in:     []string{"test-002"},
			wantID: "test-002",
		},
		{
			name:     "only options",
			in:       []string{"--json"},
			wantID:   "0",
			wantOpts: viewOptions{json: true},
		},
		{
			name:     "ID with json",
			in:       []string{"test-001", "--json"},
			wantID:   "test-001",
			wantOpts: viewOptions{json: true},
		},
		{
			name:     "negative index with save-logs",
			in:       []string{"-2", "--save-logs", "out.txt"},
			wantID:   "-2",
			wantOpts: viewOptions{saveLogs: "out.txt"},
		},
		{
			name:     "save-logs with equals",
			in:       []string{"abc", "--save-logs=out.txt", "--json"},
			wantID:   "abc",
			wantOpts: viewOptions{json: true, saveLogs: "out.txt"},
		},
		{
			name:     "leading -- uses default 0",
			in:       []string{"--", "--json"},
			wantID:   "0",
			wantOpts: viewOptions{json: true},
		},
		{
			name:    "save-logs without value",
			in:      []string{"0", "--save-logs"},
			wantErr: true,
		},
		{
			name:    "unknown option",
			in:      []string{"0", "--top"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOpts, err := parseViewArgs(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseViewArgs() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseViewArgs() unexpected error: %v", err)
			}
			if gotID != tt.wantID {
				t.Errorf("parseViewArgs() gotID = %v, want %v", gotID, tt.wantID)
			}
			if gotOpts != tt.wantOpts {
				t.Errorf("parseViewArgs() gotOpts = %+v, want %+v", gotOpts, tt.wantOpts)
			}
		})
	}
}

func TestResolveRunID(t *testing.T) {
	runs := []model.TestRun{
		{ID: "test-003"},
		{ID: "test-002"},
		{ID: "test-001"},
		{ID: "abc-1"},
	}

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "newest", arg: "0", want: "test-003"},
		{name: "second newest", arg: "-1", want: "test-002"},
		{name: "last", arg: "-3", want: "abc-1"},
		{name: "out of range", arg: "-4", wantErr: true},
		{name: "positive index", arg: "1", wantErr: true},
		{name: "exact id", arg: "test-001", want: "test-001"},
		{name: "case insensitive", arg: "TEST-001", want: "test-001"},
		{name: "unique prefix", arg: "abc", want: "abc-1"},
		{name: "ambiguous prefix", arg: "test-", wantErr: true},
		{name: "no match", arg: "zzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRunID(runs, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("resolveRunID() = %v, expected error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRunID() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveRunID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveRunIDAmbiguous(t *testing.T) {
	_, err := resolveRunID([]model.TestRun{{ID: "test-1"}, {ID: "test-2"}}, "test")
	if !errors.Is(err, errAmbiguous) {
		t.Errorf("resolveRunID() error = %v, want errAmbiguous", err)
	}
}

func TestResolveRunIDEmpty(t *testing.T) {
	if _, err := resolveRunID(nil, "0"); err == nil {
		t.Error("resolveRunID() expected error for empty list")
	}
}
