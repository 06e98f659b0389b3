// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/retrieval"
)

func TestFormatOperationResult(t *testing.T) {
	result := &OperationResult{Success: true, Message: "done"}

	if got := FormatOperationResult(result, FormatText); got != "done\n" {
		t.Errorf("text = %q", got)
	}
	if got := FormatOperationResult(&OperationResult{Success: true}, FormatText); got != "Operation completed successfully\n" {
		t.Errorf("text without message = %q", got)
	}
	if got := FormatOperationResult(result, FormatTable); !strings.Contains(got, "SUCCESS") {
		t.Errorf("table missing status: %s", got)
	}

	var decoded OperationResult
	if err := json.Unmarshal([]byte(FormatOperationResult(result, FormatJSON)), &decoded); err != nil {
		t.Fatalf("json does not parse: %v", err)
	}
	if !decoded.Success || decoded.Message != "done" {
		t.Errorf("unexpected json result: %+v", decoded)
	}
}

func TestFormatError(t *testing.T) {
	err := errors.New("boom")
	if got := FormatError(err, FormatText); got != "Error: boom\n" {
		t.Errorf("text = %q", got)
	}
	if got := FormatError(err, FormatTable); !strings.Contains(got, "FAILED") || !strings.Contains(got, "boom") {
		t.Errorf("table = %s", got)
	}
	if got := FormatError(err, FormatJSON); !strings.Contains(got, `"error": "boom"`) {
		t.Errorf("json = %s", got)
	}
}

func TestFormatOutcome_DistinguishesOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome retrieval.Outcome
		text    string
		status  string
	}{
		{
			name:    "downloaded",
			outcome: retrieval.Outcome{Kind: retrieval.OutcomeDownloaded, Key: "k", Path: "/tmp/k", Bytes: 2048},
			text:    "Downloaded k to /tmp/k (2.0 KiB)",
			status:  "DOWNLOADED",
		},
		{
			name:    "restore initiated",
			outcome: retrieval.Outcome{Kind: retrieval.OutcomeRestoreInitiated, Key: "k", WaitHint: retrieval.DeepArchiveWaitHint},
			text:    "Restore initiated for k; " + retrieval.DeepArchiveWaitHint,
			status:  "RESTORE INITIATED",
		},
		{
			name:    "already in progress",
			outcome: retrieval.Outcome{Kind: retrieval.OutcomeRestoreAlreadyInProgress, Key: "k"},
			text:    "Restore already in progress for k",
			status:  "RESTORE IN PROGRESS",
		},
		{
			name: "failed",
			outcome: retrieval.Outcome{
				Kind:   retrieval.OutcomeFailed,
				Key:    "k",
				Reason: retrieval.ReasonPollTimeout,
				Err:    common.ErrPollTimeout,
			},
			text:   "Error: " + retrieval.ReasonPollTimeout,
			status: "FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOutcome(tt.outcome, FormatText); !strings.Contains(got, tt.text) {
				t.Errorf("text = %q, want substring %q", got, tt.text)
			}
			if got := FormatOutcome(tt.outcome, FormatTable); !strings.Contains(got, tt.status) {
				t.Errorf("table missing status %q: %s", tt.status, got)
			}

			var decoded struct {
				Success bool   `json:"success"`
				Status  string `json:"status"`
				Data    struct {
					Outcome string `json:"outcome"`
				} `json:"data"`
			}
			if err := json.Unmarshal([]byte(FormatOutcome(tt.outcome, FormatJSON)), &decoded); err != nil {
				t.Fatalf("json does not parse: %v", err)
			}
			if decoded.Status != tt.status {
				t.Errorf("json status = %q, want %q", decoded.Status, tt.status)
			}
			if decoded.Data.Outcome != tt.outcome.Kind.String() {
				t.Errorf("json outcome = %q, want %q", decoded.Data.Outcome, tt.outcome.Kind.String())
			}
			if decoded.Success == tt.outcome.Failed() {
				t.Errorf("json success = %v for %s", decoded.Success, tt.outcome.Kind)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	size := int64(3 * 1024 * 1024)
	modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	descriptor := `ongoing-request="false", expiry-date="Fri, 10 May 2024 00:00:00 GMT"`
	meta := &common.ObjectMetadata{
		Key:               "movies/a.tar.gz",
		StorageClass:      "GLACIER",
		StorageTier:       common.TierGlacier,
		RestoreDescriptor: &descriptor,
		Size:              &size,
		LastModified:      &modified,
	}

	text := FormatMetadata(meta, FormatText)
	for _, want := range []string{"Key: movies/a.tar.gz", "Storage Class: GLACIER", "Restore Status: complete", "Size: 3.0 MiB", "2024-05-01T12:00:00Z"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}

	if table := FormatMetadata(meta, FormatTable); !strings.Contains(table, "│ Restore Status") {
		t.Errorf("table missing restore row:\n%s", table)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(FormatMetadata(meta, FormatJSON)), &decoded); err != nil {
		t.Fatalf("json does not parse: %v", err)
	}
	if decoded["restore_status"] != "complete" {
		t.Errorf("json restore_status = %v", decoded["restore_status"])
	}
	if decoded["storage_tier"] != "GLACIER" {
		t.Errorf("json storage_tier = %v", decoded["storage_tier"])
	}

	if got := FormatMetadata(&common.ObjectMetadata{Key: "k", StorageTier: common.TierStandard}, FormatText); !strings.Contains(got, "Storage Class: STANDARD") {
		t.Errorf("missing storage class should read STANDARD:\n%s", got)
	}
	if got := FormatMetadata(nil, FormatText); !strings.HasPrefix(got, "Error:") {
		t.Errorf("nil metadata = %q", got)
	}
}

func TestFormatSearchResult_NoMatches(t *testing.T) {
	out := FormatSearchResult(&SearchResult{Keyword: "zzz"}, FormatText)
	if !strings.Contains(out, "total matches found = 0") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "S3 Search Matches") {
		t.Errorf("no table expected: %s", out)
	}
}

func TestFormatSearchResult_ErrorRow(t *testing.T) {
	result := &SearchResult{
		Keyword: "a",
		Objects: []SearchRow{{Index: 0, Key: "a.tar.gz", Error: "head object 'a.tar.gz': throttled"}},
	}
	out := FormatSearchResult(result, FormatText)
	if !strings.Contains(out, "Error: 0 a.tar.gz: head object") {
		t.Errorf("missing error line: %s", out)
	}
}

func TestFormatUploadReport(t *testing.T) {
	report := &UploadReport{
		Uploaded: []UploadedItem{{Source: "a.mkv", Key: "tv/a.mkv.tar.gz", CompletedPath: "completed/a.mkv"}},
		Failed:   []UploadFailure{{Source: "b.mkv", Archive: "b.mkv.tar.gz", Error: "denied"}},
	}
	out := FormatUploadReport(report, FormatText)
	for _, want := range []string{"Uploaded a.mkv as tv/a.mkv.tar.gz", "moved to completed/a.mkv", "upload of b.mkv failed: denied", "kept for retry: b.mkv.tar.gz"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}

	if !strings.Contains(FormatUploadReport(report, FormatJSON), `"key": "tv/a.mkv.tar.gz"`) {
		t.Error("json output missing key")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     []string
	}{
		{name: "short", text: "hello", maxWidth: 10, want: []string{"hello"}},
		{name: "words", text: "hello big world", maxWidth: 9, want: []string{"hello big", "world"}},
		{name: "hard wrap", text: "abcdefghij", maxWidth: 4, want: []string{"abcd", "efgh", "ij"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.maxWidth)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrapText = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a-very-long-key", 8); got != "a-ver..." {
		t.Errorf("truncate = %q", got)
	}
}
