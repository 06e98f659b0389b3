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

import "errors"

var (
	// Configuration errors

	// ErrBucketRequired is returned when MGMT_BUCKET is required but not set.
	ErrBucketRequired = errors.New("MGMT_BUCKET is required")

	// ErrUnsupportedBackend is returned when an unsupported backend is specified.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrUnsupportedOutputFormat is returned when an unsupported output format is specified.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")

	// ErrInvalidPollInterval is returned when MGMT_POLL_INTERVAL is not positive.
	ErrInvalidPollInterval = errors.New("MGMT_POLL_INTERVAL must be positive")

	// ErrInvalidRestoreDays is returned when MGMT_RESTORE_DAYS is not positive.
	ErrInvalidRestoreDays = errors.New("MGMT_RESTORE_DAYS must be positive")

	// ErrConfigLocked is returned when another process is writing the config file.
	ErrConfigLocked = errors.New("config file is locked by another process")

	// Command errors

	// ErrLocalDirRequired is returned when a command needs MGMT_LOCAL_DIR.
	ErrLocalDirRequired = errors.New("MGMT_LOCAL_DIR is not set or does not exist")

	// ErrInvalidLocation is returned by ls for an unknown location.
	ErrInvalidLocation = errors.New("location must be one of local, s3, global, here")

	// ErrUploadTarget is returned when upload gets neither or both of a path and --all.
	ErrUploadTarget = errors.New("specify exactly one of a file name or --all")

	// ErrInvalidSelection is returned when a prompt answer does not name a listed row.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrAborted is returned when the user declines a confirmation.
	ErrAborted = errors.New("aborted")
)
