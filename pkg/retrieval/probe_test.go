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
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/memory"
)

func TestProbe_Fetch(t *testing.T) {
	store := memory.New()
	store.Seed("archive/y.mkv", []byte("abc"), "GLACIER")
	probe := NewProbe(store, nil)

	meta, err := probe.Fetch(context.Background(), "archive/y.mkv")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if meta.StorageTier != common.TierGlacier {
		t.Errorf("expected GLACIER, got %s", meta.StorageTier)
	}
	if meta.RestoreStatus() != common.RestoreNone {
		t.Errorf("expected none, got %s", meta.RestoreStatus())
	}
}

func TestProbe_NeverCaches(t *testing.T) {
	store := memory.New()
	store.Seed("k", []byte("x"), "GLACIER")
	probe := NewProbe(store, nil)
	ctx := context.Background()

	first, _ := probe.Fetch(ctx, "k")
	store.SetRestoreDescriptor("k", descriptor(ongoing))
	second, _ := probe.Fetch(ctx, "k")

	if first.RestoreStatus() != common.RestoreNone || second.RestoreStatus() != common.RestoreIncomplete {
		t.Errorf("expected fresh snapshots, got %s then %s", first.RestoreStatus(), second.RestoreStatus())
	}
	if store.Calls(memory.OpHead) != 2 {
		t.Errorf("expected 2 head calls, got %d", store.Calls(memory.OpHead))
	}
}

func TestProbe_ErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found passes through", &common.NotFoundError{Key: "k"}, common.IsNotFound},
		{"transient passes through", &common.TransientError{Op: "head object", Err: memory.ErrInjected}, common.IsTransient},
		{"raw error becomes transient", memory.ErrInjected, common.IsTransient},
		{"cancellation passes through", context.Canceled, func(err error) bool {
			return errors.Is(err, context.Canceled) && !common.IsTransient(err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			store.Seed("k", []byte("x"), "")
			store.FailNext(memory.OpHead, tt.err)

			_, err := NewProbe(store, nil).Fetch(context.Background(), "k")
			if !tt.check(err) {
				t.Errorf("unexpected classification: %v", err)
			}
		})
	}
}

func TestProbe_EmptyKey(t *testing.T) {
	_, err := NewProbe(memory.New(), nil).Fetch(context.Background(), "")
	if !errors.Is(err, common.ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestProbe_Limiter(t *testing.T) {
	store := memory.New()
	store.Seed("k", []byte("x"), "")
	probe := NewProbe(store, rate.NewLimiter(rate.Every(time.Hour), 1))

	if _, err := probe.Fetch(context.Background(), "k"); err != nil {
		t.Fatalf("first fetch should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := probe.Fetch(ctx, "k"); err == nil {
		t.Fatal("expected limiter to refuse a wait past the deadline")
	}
	if store.Calls(memory.OpHead) != 1 {
		t.Errorf("throttled fetch must not reach the backend, got %d head calls", store.Calls(memory.OpHead))
	}
}
