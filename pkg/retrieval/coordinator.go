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

	"github.com/google/uuid"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// Coordinator decides, from an object's tier and restore state, whether to
// download it now, request a restore, poll, or report that the caller must
// wait.
type Coordinator struct {
	store       common.ObjectStore
	probe       *Probe
	poller      *Poller
	transfer    *Transfer
	restoreDays int32
	logger      adapters.Logger
}

// NewCoordinator wires a Probe, Poller and Transfer around store.
func NewCoordinator(store common.ObjectStore, opts Options) (*Coordinator, error) {
	if store == nil {
		return nil, common.ErrStorageRequired
	}
	opts = opts.withDefaults()

	probe := NewProbe(store, opts.Limiter)
	transfer := NewTransfer(store, opts.DestDir, opts.ObjectPrefix, opts.Logger)
	poller := NewPoller(probe, transfer, opts.Clock, opts.PollInterval, opts.MaxWait, opts.Logger)

	return &Coordinator{
		store:       store,
		probe:       probe,
		poller:      poller,
		transfer:    transfer,
		restoreDays: opts.RestoreDays,
		logger:      opts.Logger,
	}, nil
}

// Probe returns the coordinator's metadata probe.
func (c *Coordinator) Probe() *Probe {
	return c.probe
}

// Transfer returns the coordinator's transfer component.
func (c *Coordinator) Transfer() *Transfer {
	return c.transfer
}

// Status probes key without acting on it.
func (c *Coordinator) Status(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	return c.probe.Fetch(ctx, key)
}

// Retrieve brings key to the local destination directory, requesting a
// restore first when the object is archived. At most one restore request is
// issued per call and none when a restore is already running.
func (c *Coordinator) Retrieve(ctx context.Context, key string) Outcome {
	id := uuid.NewString()
	logger := c.logger.WithFields(
		adapters.Field{Key: "retrieval_id", Value: id},
		adapters.Field{Key: "key", Value: key})
	ctx = adapters.ContextWithLogger(ctx, logger)

	out := c.retrieve(ctx, logger, key)
	out.RetrievalID = id

	fields := []adapters.Field{{Key: "outcome", Value: out.Kind.String()}}
	if out.Failed() {
		fields = append(fields,
			adapters.Field{Key: "reason", Value: out.Reason},
			adapters.Field{Key: "error", Value: out.Err})
		logger.Error(ctx, "retrieval failed", fields...)
	} else {
		logger.Info(ctx, "retrieval finished", fields...)
	}
	return out
}

func (c *Coordinator) retrieve(ctx context.Context, logger adapters.Logger, key string) Outcome {
	meta, err := c.probe.Fetch(ctx, key)
	if err != nil {
		return probeFailure(key, err)
	}
	status := meta.RestoreStatus()

	logger.Info(ctx, "probed object",
		adapters.Field{Key: "storage_tier", Value: string(meta.StorageTier)},
		adapters.Field{Key: "restore_status", Value: status.String()})

	if meta.StorageTier == common.TierStandard || status == common.RestoreComplete {
		return download(ctx, c.transfer, key)
	}
	if status == common.RestoreIncomplete {
		return alreadyInProgress(key)
	}

	tier, ok := common.RestoreTierFor(meta.StorageTier)
	if !ok || status == common.RestoreUnknown {
		descriptor := ""
		if meta.RestoreDescriptor != nil {
			descriptor = *meta.RestoreDescriptor
		}
		return failed(key, ReasonNotRestorable, &common.AmbiguousStateError{
			Key:          key,
			StorageClass: meta.StorageClass,
			Descriptor:   descriptor,
		})
	}

	if err := c.store.RestoreObject(ctx, key, tier, c.restoreDays); err != nil {
		if errors.Is(err, common.ErrRestoreAlreadyInProgress) {
			return alreadyInProgress(key)
		}
		return failed(key, ReasonRestoreFailed, classify("restore object", key, err))
	}
	logger.Info(ctx, "restore requested",
		adapters.Field{Key: "restore_tier", Value: string(tier)},
		adapters.Field{Key: "days", Value: c.restoreDays})

	if meta.StorageTier == common.TierDeepArchive {
		return restoreInitiated(key, DeepArchiveWaitHint)
	}
	return c.poller.PollUntilReady(ctx, key)
}

// Download transfers key without any tier logic.
func (c *Coordinator) Download(ctx context.Context, key string) (string, int64, error) {
	return c.transfer.Download(ctx, key)
}

// Upload sends localPath to the backend under the configured prefix plus
// extraPrefix and returns the key.
func (c *Coordinator) Upload(ctx context.Context, localPath, extraPrefix string) (string, error) {
	return c.transfer.Upload(ctx, localPath, extraPrefix)
}
