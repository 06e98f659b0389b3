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

package common

import "strings"

// RestoreStatus is the semantic state of an object's restore descriptor.
type RestoreStatus int

const (
	// RestoreNone means the backend reported no restore descriptor.
	RestoreNone RestoreStatus = iota
	// RestoreIncomplete means a restore request is in progress.
	RestoreIncomplete
	// RestoreComplete means a restored copy is readable.
	RestoreComplete
	// RestoreUnknown means a descriptor was present but not recognized.
	RestoreUnknown
)

// String returns the short status name shown to users.
func (s RestoreStatus) String() string {
	switch s {
	case RestoreNone:
		return "none"
	case RestoreIncomplete:
		return "incomplete"
	case RestoreComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON output carries the name.
func (s RestoreStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	ongoingRequestMarker = "ongoing-request"
	trueMarker           = "true"
	falseMarker          = "false"
)

// ParseRestoreStatus turns a raw restore descriptor into a RestoreStatus.
//
// The checks are case-sensitive substring tests applied in order: an absent or
// empty descriptor is NONE, "ongoing-request" with "true" is INCOMPLETE,
// "ongoing-request" with "false" is COMPLETE, anything else is UNKNOWN.
// Every caller that interprets restore state must go through this function.
func ParseRestoreStatus(descriptor *string) RestoreStatus {
	if descriptor == nil || *descriptor == "" {
		return RestoreNone
	}
	d := *descriptor
	if !strings.Contains(d, ongoingRequestMarker) {
		return RestoreUnknown
	}
	if strings.Contains(d, trueMarker) {
		return RestoreIncomplete
	}
	if strings.Contains(d, falseMarker) {
		return RestoreComplete
	}
	return RestoreUnknown
}
