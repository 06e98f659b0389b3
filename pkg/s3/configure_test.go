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

package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

func TestS3_New_MissingBucket(t *testing.T) {
	_, err := New(context.Background(), map[string]string{}, nil)
	if !errors.Is(err, common.ErrBucketNotSet) {
		t.Fatalf("expected ErrBucketNotSet, got %v", err)
	}
}

func TestS3_New_WithEndpointAndCreds(t *testing.T) {
	s, err := New(context.Background(), map[string]string{
		"bucket":            "b",
		"region":            "us-east-1",
		"endpoint":          "http://localhost:9000",
		"path_style":        "true",
		"access_key_id":     "ak",
		"secret_access_key": "sk",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected configure error: %v", err)
	}
	if s.svc == nil || s.uploader == nil {
		t.Fatalf("expected svc and uploader initialized")
	}
	if s.Bucket() != "b" {
		t.Errorf("expected bucket b, got %s", s.Bucket())
	}
}
