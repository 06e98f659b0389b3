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
	"context"
	"io"
)

// ObjectStore is the subset of object-storage operations the tool needs.
// Implementations must be safe for concurrent use across different keys.
type ObjectStore interface {
	// HeadObject fetches the object's current metadata. Returns a *NotFoundError
	// when the key does not exist and a *TransientError on backend failure.
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)

	// RestoreObject requests a temporary readable copy of an archived object.
	RestoreObject(ctx context.Context, key string, tier RestoreTier, days int32) error

	// GetObject streams the object body. The caller must close the reader.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// PutObject stores the body under key in the default storage class.
	PutObject(ctx context.Context, key string, body io.Reader) error

	// ListObjects returns every object whose key starts with prefix.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// DeleteObject removes the object.
	DeleteObject(ctx context.Context, key string) error

	// ListBuckets returns the names of the buckets visible to the credentials.
	ListBuckets(ctx context.Context) ([]string, error)
}
