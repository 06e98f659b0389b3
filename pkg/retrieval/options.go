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

// Package retrieval implements tiered-storage retrieval: probing an object's
// tier and restore state, requesting restores for archived tiers, polling
// GLACIER restores to completion and transferring object bytes.
package retrieval

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
)

const (
	// DefaultPollInterval is the wait between restore status probes.
	DefaultPollInterval = 30 * time.Second

	// DefaultMaxWait bounds how long a GLACIER restore is polled.
	DefaultMaxWait = 2 * time.Hour

	// DefaultRestoreDays is how long a restored copy stays readable.
	DefaultRestoreDays int32 = 10
)

// Options configures a Coordinator.
type Options struct {
	// PollInterval is the wait between probes while a restore is in progress.
	PollInterval time.Duration

	// MaxWait stops polling once another interval would exceed it. Zero or
	// negative disables the cutoff.
	MaxWait time.Duration

	// RestoreDays is the restoration-duration hint sent with restore requests.
	RestoreDays int32

	// DestDir is the directory downloads are written to. Empty means the
	// working directory.
	DestDir string

	// ObjectPrefix is prepended to upload keys.
	ObjectPrefix string

	// Clock drives polling waits. Defaults to the wall clock.
	Clock Clock

	// Limiter throttles metadata probes. Nil disables throttling.
	Limiter *rate.Limiter

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger adapters.Logger
}

// DefaultOptions returns Options with the default poll interval, max wait and
// restore duration.
func DefaultOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
		RestoreDays:  DefaultRestoreDays,
	}
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RestoreDays <= 0 {
		o.RestoreDays = DefaultRestoreDays
	}
	if o.Clock == nil {
		o.Clock = RealClock()
	}
	if o.Logger == nil {
		o.Logger = adapters.NewNoOpLogger()
	}
	return o
}
