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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

type pollState int

const (
	stateWaiting pollState = iota
	stateReady
	stateAborted
)

// Poller waits for an issued GLACIER restore to complete and then downloads
// the object. It only reads restore status and never re-requests a restore.
type Poller struct {
	probe    *Probe
	transfer *Transfer
	clock    Clock
	interval time.Duration
	maxWait  time.Duration
	logger   adapters.Logger
}

// NewPoller creates a Poller. A non-positive maxWait polls until the restore
// completes, aborts, or ctx is canceled.
func NewPoller(probe *Probe, transfer *Transfer, clock Clock, interval, maxWait time.Duration, logger adapters.Logger) *Poller {
	if clock == nil {
		clock = RealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}
	return &Poller{
		probe:    probe,
		transfer: transfer,
		clock:    clock,
		interval: interval,
		maxWait:  maxWait,
		logger:   logger,
	}
}

// PollUntilReady probes key every interval. INCOMPLETE keeps waiting,
// COMPLETE downloads the object and any other status aborts.
func (p *Poller) PollUntilReady(ctx context.Context, key string) Outcome {
	logger := adapters.FromContext(ctx, p.logger)
	start := p.clock.Now()
	polls := 0
	state := stateWaiting

	for state == stateWaiting {
		polls++
		meta, err := p.probe.Fetch(ctx, key)
		if err != nil {
			out := probeFailure(key, err)
			out.Polls = polls
			return out
		}

		status := meta.RestoreStatus()
		logger.Debug(ctx, "polled restore status",
			adapters.Field{Key: "key", Value: key},
			adapters.Field{Key: "status", Value: status.String()},
			adapters.Field{Key: "poll", Value: polls})

		switch status {
		case common.RestoreIncomplete:
			if p.maxWait > 0 && p.clock.Now().Add(p.interval).Sub(start) > p.maxWait {
				logger.Warn(ctx, "restore poll timed out",
					adapters.Field{Key: "key", Value: key},
					adapters.Field{Key: "max_wait", Value: p.maxWait.String()})
				out := failed(key, ReasonPollTimeout, fmt.Errorf("%w after %s", common.ErrPollTimeout, p.maxWait))
				out.Polls = polls
				return out
			}
			if err := p.sleep(ctx); err != nil {
				out := failed(key, ReasonCanceled, err)
				out.Polls = polls
				return out
			}
		case common.RestoreComplete:
			state = stateReady
		default:
			state = stateAborted
			out := failed(key, ReasonUnexpectedStatus,
				fmt.Errorf("%w: %s", common.ErrUnexpectedRestoreStatus, status))
			out.Polls = polls
			return out
		}
	}

	out := download(ctx, p.transfer, key)
	out.Polls = polls
	return out
}

func (p *Poller) sleep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.interval):
		return nil
	}
}

// probeFailure maps a probe error onto a Failed outcome.
func probeFailure(key string, err error) Outcome {
	switch {
	case common.IsNotFound(err):
		return failed(key, ReasonNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return failed(key, ReasonCanceled, err)
	default:
		return failed(key, ReasonProbeFailed, err)
	}
}

// download runs the transfer and maps its result onto an Outcome.
func download(ctx context.Context, t *Transfer, key string) Outcome {
	dest, n, err := t.Download(ctx, key)
	if err != nil {
		return failed(key, ReasonTransferFailed, err)
	}
	return downloaded(key, dest, n)
}
