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

// Package version holds the build version of the mgmt binary.
package version

// Version is the application version.
// This should be set at build time using:
//
//	go build -ldflags "-X github.com/will-wright-eng/media-mgmt-cli/pkg/version.Version=1.0.0"
var Version = "0.4.0-dev" // default version if not set at build time

// Get returns the application version string.
func Get() string {
	return Version
}

// Banner returns the string printed by --version.
func Banner() string {
	return "Media MGMT CLI Version: " + Get()
}
