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
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/retrieval"
)

// OutputFormat defines the output format type.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// OperationResult holds the result of an operation.
type OperationResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// FormatOperationResult formats an operation result in the specified format.
func FormatOperationResult(result *OperationResult, format OutputFormat) string {
	switch format {
	case FormatJSON:
		return formatJSON(result)
	case FormatTable:
		return formatResultTable(result)
	default:
		return formatResultText(result)
	}
}

// FormatError formats an error message in the specified format.
func FormatError(err error, format OutputFormat) string {
	result := &OperationResult{
		Success: false,
		Error:   err.Error(),
	}
	return FormatOperationResult(result, format)
}

// FormatOutcome renders a retrieval outcome. The three non-download outcomes
// carry distinct statuses: a restore was started and the object must be
// fetched later, a restore was already running, or the retrieval failed.
func FormatOutcome(outcome retrieval.Outcome, format OutputFormat) string {
	result := &OperationResult{
		Success: !outcome.Failed(),
		Data:    outcome,
	}
	switch outcome.Kind {
	case retrieval.OutcomeDownloaded:
		result.Status = "DOWNLOADED"
		result.Message = fmt.Sprintf("Downloaded %s to %s (%s)",
			outcome.Key, outcome.Path, humanize.IBytes(uint64(outcome.Bytes)))
	case retrieval.OutcomeRestoreInitiated:
		result.Status = "RESTORE INITIATED"
		result.Message = fmt.Sprintf("Restore initiated for %s; %s", outcome.Key, outcome.WaitHint)
	case retrieval.OutcomeRestoreAlreadyInProgress:
		result.Status = "RESTORE IN PROGRESS"
		result.Message = fmt.Sprintf("Restore already in progress for %s; run the download again later", outcome.Key)
	default:
		result.Status = "FAILED"
		result.Error = outcome.Reason
		if outcome.Err != nil {
			result.Error = fmt.Sprintf("%s: %v", outcome.Reason, outcome.Err)
		}
	}
	return FormatOperationResult(result, format)
}

func formatResultText(result *OperationResult) string {
	if result.Success {
		if result.Message != "" {
			return result.Message + "\n"
		}
		return "Operation completed successfully\n"
	}
	return fmt.Sprintf("Error: %s\n", result.Error)
}

func formatResultTable(result *OperationResult) string {
	status := result.Status
	text := result.Message
	if status == "" {
		status = "SUCCESS"
		if !result.Success {
			status = "FAILED"
		}
	}
	if !result.Success {
		text = result.Error
	}

	var b strings.Builder
	b.WriteString("┌────────────────────────────────────────────────────────┐\n")
	b.WriteString("│ Operation Result                                       │\n")
	b.WriteString("├────────────────────────────────────────────────────────┤\n")
	fmt.Fprintf(&b, "│ Status: %-46s │\n", status)
	if text != "" {
		for _, line := range wrapText(text, 54) {
			fmt.Fprintf(&b, "│ %-54s │\n", line)
		}
	}
	b.WriteString("└────────────────────────────────────────────────────────┘\n")
	return b.String()
}

func formatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %s\"}\n", err)
	}
	return string(data) + "\n"
}

// FormatMetadata formats an object's metadata, including the parsed restore
// status, in the specified format.
func FormatMetadata(meta *common.ObjectMetadata, format OutputFormat) string {
	if meta == nil {
		return FormatError(common.ErrKeyNotFound, format)
	}
	switch format {
	case FormatJSON:
		return formatMetadataJSON(meta)
	case FormatTable:
		return formatMetadataTable(meta)
	default:
		return formatMetadataText(meta)
	}
}

func metadataFields(meta *common.ObjectMetadata) [][2]string {
	fields := [][2]string{
		{"Key", meta.Key},
		{"Storage Class", displayStorageClass(meta)},
		{"Storage Tier", string(meta.StorageTier)},
		{"Restore Status", meta.RestoreStatus().String()},
	}
	if meta.RestoreDescriptor != nil {
		fields = append(fields, [2]string{"Restore", *meta.RestoreDescriptor})
	}
	if meta.Size != nil {
		fields = append(fields, [2]string{"Size", humanize.IBytes(uint64(*meta.Size))})
	}
	if meta.LastModified != nil {
		fields = append(fields, [2]string{"Last Modified",
			fmt.Sprintf("%s (%s)", meta.LastModified.Format(time.RFC3339), humanize.Time(*meta.LastModified))})
	}
	if meta.ContentType != "" {
		fields = append(fields, [2]string{"Content Type", meta.ContentType})
	}
	if meta.ETag != "" {
		fields = append(fields, [2]string{"ETag", meta.ETag})
	}
	return fields
}

func displayStorageClass(meta *common.ObjectMetadata) string {
	if meta.StorageClass == "" {
		return string(common.TierStandard)
	}
	return meta.StorageClass
}

func formatMetadataText(meta *common.ObjectMetadata) string {
	var b strings.Builder
	b.WriteString("Metadata:\n")
	for _, f := range metadataFields(meta) {
		fmt.Fprintf(&b, "  %s: %s\n", f[0], f[1])
	}
	return b.String()
}

func formatMetadataTable(meta *common.ObjectMetadata) string {
	var b strings.Builder
	b.WriteString("┌──────────────────────┬────────────────────────────────────────┐\n")
	b.WriteString("│ Field                │ Value                                  │\n")
	b.WriteString("├──────────────────────┼────────────────────────────────────────┤\n")
	for _, f := range metadataFields(meta) {
		fmt.Fprintf(&b, "│ %-20s │ %-38s │\n", f[0], truncate(f[1], 38))
	}
	b.WriteString("└──────────────────────┴────────────────────────────────────────┘\n")
	return b.String()
}

func formatMetadataJSON(meta *common.ObjectMetadata) string {
	type metadataJSON struct {
		*common.ObjectMetadata
		RestoreStatus common.RestoreStatus `json:"restore_status"`
	}
	return formatJSON(metadataJSON{ObjectMetadata: meta, RestoreStatus: meta.RestoreStatus()})
}

// FormatSearchResult prints local matches as a list and bucket matches as a
// table of index, storage class, last modified date, key, restore status and
// size.
func FormatSearchResult(result *SearchResult, format OutputFormat) string {
	if format == FormatJSON {
		return formatJSON(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Searching for keyword `%s`...\n", result.Keyword)
	fmt.Fprintf(&b, "total matches found = %d\n", len(result.Local)+len(result.Objects))
	if len(result.Local) == 0 && len(result.Objects) == 0 {
		return b.String()
	}

	b.WriteString("\nLocal File Matches\n")
	for _, name := range result.Local {
		fmt.Fprintf(&b, "%s\n", name)
	}
	b.WriteString("\n")

	if len(result.Objects) == 0 {
		return b.String()
	}
	b.WriteString("S3 Search Matches\n")
	b.WriteString("┌─────┬──────────────┬────────────┬────────────────────────────────────────┬────────────┬────────────┐\n")
	b.WriteString("│ #   │ StorageClass │ Modified   │ Key                                    │ Restore    │ Size       │\n")
	b.WriteString("├─────┼──────────────┼────────────┼────────────────────────────────────────┼────────────┼────────────┤\n")
	for _, row := range result.Objects {
		if row.Metadata == nil {
			fmt.Fprintf(&b, "│ %-3d │ %-12s │ %-10s │ %-38s │ %-10s │ %-10s │\n",
				row.Index, "-", "-", truncate(row.Key, 38), "error", "-")
			continue
		}
		modified := "-"
		if row.Metadata.LastModified != nil {
			modified = row.Metadata.LastModified.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "│ %-3d │ %-12s │ %-10s │ %-38s │ %-10s │ %-10s │\n",
			row.Index,
			truncate(displayStorageClass(row.Metadata), 12),
			modified,
			truncate(row.Key, 38),
			row.Restore.String(),
			humanize.IBytes(uint64(row.Metadata.SizeOrZero())))
	}
	b.WriteString("└─────┴──────────────┴────────────┴────────────────────────────────────────┴────────────┴────────────┘\n")
	for _, row := range result.Objects {
		if row.Error != "" {
			fmt.Fprintf(&b, "Error: %d %s: %s\n", row.Index, row.Key, row.Error)
		}
	}
	return b.String()
}

// FormatListing formats the result of ListCommand.
func FormatListing(listing *Listing, format OutputFormat) string {
	if format == FormatJSON {
		return formatJSON(listing)
	}

	var b strings.Builder
	switch listing.Location {
	case LocationHere:
		for _, name := range listing.Here {
			fmt.Fprintf(&b, "%s\n", name)
		}
		return b.String()
	case LocationLocal, LocationGlobal:
		if listing.Location == LocationGlobal {
			b.WriteString("Local Files\n")
		}
		for _, name := range listing.Local {
			fmt.Fprintf(&b, "%s\n", name)
		}
		if listing.Location == LocationLocal {
			return b.String()
		}
		b.WriteString("\nS3 Objects\n")
	}

	if format == FormatTable {
		b.WriteString(formatObjectTable(listing.Objects))
		return b.String()
	}
	for _, obj := range listing.Objects {
		fmt.Fprintf(&b, "%s\n", obj.Key)
	}
	return b.String()
}

func formatObjectTable(objects []common.ObjectInfo) string {
	if len(objects) == 0 {
		return "No objects found\n"
	}

	var b strings.Builder
	b.WriteString("┌────────────────────────────────────┬──────────────┬──────────────┬──────────────────────┐\n")
	b.WriteString("│ Key                                │ StorageClass │ Size         │ Last Modified        │\n")
	b.WriteString("├────────────────────────────────────┼──────────────┼──────────────┼──────────────────────┤\n")
	for _, obj := range objects {
		class := obj.StorageClass
		if class == "" {
			class = string(common.TierStandard)
		}
		fmt.Fprintf(&b, "│ %-34s │ %-12s │ %-12s │ %-20s │\n",
			truncate(obj.Key, 34),
			truncate(class, 12),
			humanize.IBytes(uint64(obj.Size)),
			obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("└────────────────────────────────────┴──────────────┴──────────────┴──────────────────────┘\n")
	fmt.Fprintf(&b, "Total: %d object(s)\n", len(objects))
	return b.String()
}

// FormatUploadReport formats the result of UploadCommand. Archives kept for a
// retry are listed last.
func FormatUploadReport(report *UploadReport, format OutputFormat) string {
	if format == FormatJSON {
		return formatJSON(report)
	}

	var b strings.Builder
	for _, item := range report.Uploaded {
		fmt.Fprintf(&b, "Uploaded %s as %s\n", item.Source, item.Key)
		if item.CompletedPath != "" {
			fmt.Fprintf(&b, "  moved to %s\n", item.CompletedPath)
		}
		if item.Warning != "" {
			fmt.Fprintf(&b, "  Warning: %s\n", item.Warning)
		}
	}
	var kept []string
	for _, failure := range report.Failed {
		fmt.Fprintf(&b, "Error: upload of %s failed: %s\n", failure.Source, failure.Error)
		if failure.Archive != "" {
			kept = append(kept, failure.Archive)
		}
	}
	if len(kept) > 0 {
		fmt.Fprintf(&b, "Note: compressed files kept for retry: %s\n", strings.Join(kept, ", "))
	}
	return b.String()
}

// wrapText wraps text to fit within maxWidth characters.
func wrapText(text string, maxWidth int) []string {
	if len(text) <= maxWidth {
		return []string{text}
	}

	// Check if text has no spaces - need to hard wrap
	if !strings.Contains(text, " ") {
		var lines []string
		for len(text) > maxWidth {
			lines = append(lines, text[:maxWidth])
			text = text[maxWidth:]
		}
		if len(text) > 0 {
			lines = append(lines, text)
		}
		return lines
	}

	// Text has spaces - wrap at word boundaries
	var lines []string
	var currentLine string
	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}
