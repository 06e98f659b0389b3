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

package retrieval

import (
	"fmt"
)

// DeepArchiveWaitHint tells the user when a DEEP_ARCHIVE restore is expected
// to be readable.
const DeepArchiveWaitHint = "object will be available in 12-24 hours; run the download again then"

// Failure reasons reported with OutcomeFailed.
const (
	ReasonNotFound         = "object not found"
	ReasonProbeFailed      = "metadata probe failed"
	ReasonNotRestorable    = "tier not restorable / ambiguous state"
	ReasonRestoreFailed    = "restore request failed"
	ReasonUnexpectedStatus = "unexpected restore status during poll"
	ReasonPollTimeout      = "restore did not complete before poll timeout"
	ReasonCanceled         = "polling canceled"
	ReasonTransferFailed   = "download failed"
)

// OutcomeKind classifies the result of a retrieval attempt.
type OutcomeKind int

const (
	// OutcomeDownloaded means the object was written locally.
	OutcomeDownloaded OutcomeKind = iota
	// OutcomeRestoreInitiated means a restore was requested and the object
	// will be readable later without further action.
	OutcomeRestoreInitiated
	// OutcomeRestoreAlreadyInProgress means an earlier restore is still running.
	OutcomeRestoreAlreadyInProgress
	// OutcomeFailed means the retrieval could not be completed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeRestoreInitiated:
		return "restore_initiated"
	case OutcomeRestoreAlreadyInProgress:
		return "restore_in_progress"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of Coordinator.Retrieve.
type Outcome struct {
	Kind        OutcomeKind `json:"outcome"`
	Key         string      `json:"key"`
	RetrievalID string      `json:"retrieval_id,omitempty"`

	// Path is the local file written for OutcomeDownloaded.
	Path string `json:"path,omitempty"`

	// Bytes is the number of bytes written for OutcomeDownloaded.
	Bytes int64 `json:"bytes,omitempty"`

	// WaitHint is set for OutcomeRestoreInitiated.
	WaitHint string `json:"wait_hint,omitempty"`

	// Reason and Err are set for OutcomeFailed.
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`

	// Polls counts restore status probes made by the poller.
	Polls int `json:"polls,omitempty"`
}

// Failed reports whether the outcome is OutcomeFailed.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeFailed
}

// String renders a one-line summary for terminal output.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeDownloaded:
		return fmt.Sprintf("downloaded %s to %s", o.Key, o.Path)
	case OutcomeRestoreInitiated:
		return fmt.Sprintf("restore initiated for %s: %s", o.Key, o.WaitHint)
	case OutcomeRestoreAlreadyInProgress:
		return fmt.Sprintf("restore already in progress for %s; check again later", o.Key)
	default:
		if o.Err != nil {
			return fmt.Sprintf("retrieval of %s failed: %s: %v", o.Key, o.Reason, o.Err)
		}
		return fmt.Sprintf("retrieval of %s failed: %s", o.Key, o.Reason)
	}
}

func downloaded(key, path string, n int64) Outcome {
	return Outcome{Kind: OutcomeDownloaded, Key: key, Path: path, Bytes: n}
}

func restoreInitiated(key, hint string) Outcome {
	return Outcome{Kind: OutcomeRestoreInitiated, Key: key, WaitHint: hint}
}

func alreadyInProgress(key string) Outcome {
	return Outcome{Kind: OutcomeRestoreAlreadyInProgress, Key: key}
}

func failed(key, reason string, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Key: key, Reason: reason, Err: err}
}
