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

package factory

import (
	"context"
	"strings"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/memory"
)

func init() {
	RegisterStorage("memory", func(ctx context.Context, settings map[string]string, logger adapters.Logger) (common.ObjectStore, error) {
		storage := memory.New()
		if buckets := settings["buckets"]; buckets != "" {
			storage.SetBuckets(strings.Split(buckets, ",")...)
		} else if bucket := settings["bucket"]; bucket != "" {
			storage.SetBuckets(bucket)
		}
		return storage, nil
	})
}
