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

import (
	"time"
)

// StorageTier is the retrieval tier an object currently lives in.
type StorageTier string

const (
	// TierStandard objects can be read immediately.
	TierStandard StorageTier = "STANDARD"

	// TierGlacier objects must be restored before reading (minutes to hours).
	TierGlacier StorageTier = "GLACIER"

	// TierDeepArchive objects must be restored before reading (12-24 hours).
	TierDeepArchive StorageTier = "DEEP_ARCHIVE"

	// TierUnknown is any storage class this tool does not know how to handle.
	TierUnknown StorageTier = "UNKNOWN"
)

// instantAccessClasses are storage classes that serve reads synchronously and
// therefore behave like STANDARD for retrieval purposes.
var instantAccessClasses = map[string]bool{
	"STANDARD":            true,
	"STANDARD_IA":         true,
	"ONEZONE_IA":          true,
	"INTELLIGENT_TIERING": true,
	"GLACIER_IR":          true,
	"REDUCED_REDUNDANCY":  true,
	"EXPRESS_ONEZONE":     true,
}

// ParseStorageTier decodes a raw backend storage class. The backend omits the
// storage class for STANDARD objects, so an empty value is STANDARD.
func ParseStorageTier(storageClass string) StorageTier {
	switch {
	case storageClass == "":
		return TierStandard
	case instantAccessClasses[storageClass]:
		return TierStandard
	case storageClass == string(TierGlacier):
		return TierGlacier
	case storageClass == string(TierDeepArchive):
		return TierDeepArchive
	default:
		return TierUnknown
	}
}

// RestoreTier is the tier parameter sent with a restore request.
type RestoreTier string

const (
	RestoreTierStandard  RestoreTier = "Standard"
	RestoreTierExpedited RestoreTier = "Expedited"
)

// RestoreTierFor returns the restore request tier for an archived storage tier.
// The boolean is false for tiers that cannot be restored.
func RestoreTierFor(tier StorageTier) (RestoreTier, bool) {
	switch tier {
	case TierDeepArchive:
		return RestoreTierStandard, true
	case TierGlacier:
		return RestoreTierExpedited, true
	default:
		return "", false
	}
}

// ObjectMetadata is a snapshot of an object's server-side state taken by a
// single metadata probe. It is never mutated after construction.
type ObjectMetadata struct {
	// Key is the object's key in the bucket
	Key string `json:"key"`

	// StorageTier is the decoded retrieval tier
	StorageTier StorageTier `json:"storage_tier"`

	// StorageClass is the raw storage class reported by the backend, empty for STANDARD
	StorageClass string `json:"storage_class,omitempty"`

	// RestoreDescriptor is the raw restore status string, nil when the backend sent none
	RestoreDescriptor *string `json:"restore_descriptor,omitempty"`

	// Size is the object size in bytes, nil when unknown
	Size *int64 `json:"size_bytes,omitempty"`

	// LastModified is nil when the backend did not report it
	LastModified *time.Time `json:"last_modified,omitempty"`

	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// RestoreStatus parses the snapshot's restore descriptor.
func (m *ObjectMetadata) RestoreStatus() RestoreStatus {
	return ParseRestoreStatus(m.RestoreDescriptor)
}

// SizeOrZero returns the object size, or zero when the size is unknown.
func (m *ObjectMetadata) SizeOrZero() int64 {
	if m.Size == nil {
		return 0
	}
	return *m.Size
}

// ObjectInfo is a single entry returned by a bucket listing.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	StorageClass string    `json:"storage_class,omitempty"`
}
