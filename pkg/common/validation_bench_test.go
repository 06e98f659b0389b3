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
	"testing"
)

func BenchmarkValidateKey(b *testing.B) {
	keys := []string{
		"simple-key",
		"path/to/object",
		"deeply/nested/path/to/object.txt",
		"key-with-many-dashes-and-underscores_123",
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := keys[i%len(keys)]
		if err := ValidateKey(key); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseRestoreStatus(b *testing.B) {
	descriptors := []string{
		`ongoing-request="true"`,
		`ongoing-request="false", expiry-date="Fri, 21 Dec 2029 00:00:00 GMT"`,
		"garbage",
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = ParseRestoreStatus(&descriptors[i%len(descriptors)])
	}
}
