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
	"io"
	"sync"
	"time"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/memory"
)

// fakeClock advances instantly on After. With block set the returned channel
// never fires, which leaves cancellation as the only way out of a wait.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	block   bool
	onAfter func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	now, block, hook := f.now, f.block, f.onAfter
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	ch := make(chan time.Time, 1)
	if !block {
		ch <- now
	}
	return ch
}

func (f *fakeClock) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

// recordingStore logs the order of backend calls.
type recordingStore struct {
	*memory.Memory
	mu  sync.Mutex
	ops []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: memory.New()}
}

func (r *recordingStore) record(op string) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

func (r *recordingStore) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *recordingStore) HeadObject(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	r.record("head")
	return r.Memory.HeadObject(ctx, key)
}

func (r *recordingStore) RestoreObject(ctx context.Context, key string, tier common.RestoreTier, days int32) error {
	r.record("restore")
	return r.Memory.RestoreObject(ctx, key, tier, days)
}

func (r *recordingStore) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	r.record("get")
	return r.Memory.GetObject(ctx, key)
}

func descriptor(s string) *string { return &s }

const (
	ongoing  = `ongoing-request="true"`
	finished = `ongoing-request="false", expiry-date="Fri, 21 Dec 2029 00:00:00 GMT"`
)
