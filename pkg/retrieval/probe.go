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

	"golang.org/x/time/rate"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// Probe fetches fresh object metadata. Results are never cached: every call
// goes to the backend because a restore request changes state between calls.
type Probe struct {
	store   common.ObjectStore
	limiter *rate.Limiter
}

// NewProbe creates a Probe. limiter may be nil.
func NewProbe(store common.ObjectStore, limiter *rate.Limiter) *Probe {
	return &Probe{store: store, limiter: limiter}
}

// Fetch returns the object's current metadata. It fails with a
// *common.NotFoundError when the key does not exist and a
// *common.TransientError for any other backend failure.
func (p *Probe) Fetch(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	meta, err := p.store.HeadObject(ctx, key)
	if err != nil {
		return nil, classify("head object", key, err)
	}
	return meta, nil
}

// classify leaves taxonomy errors, validation errors and context errors as they
// are and wraps anything else as transient.
func classify(op, key string, err error) error {
	var validation *common.ValidationError
	switch {
	case common.IsNotFound(err), common.IsTransient(err), common.IsAmbiguousState(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, common.ErrEmptyKey), errors.As(err, &validation):
		return err
	case errors.Is(err, common.ErrRestoreAlreadyInProgress):
		return err
	default:
		return &common.TransientError{Op: op, Key: key, Err: err}
	}
}
