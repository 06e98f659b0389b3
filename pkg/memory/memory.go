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

// Package memory provides an in-memory implementation of common.ObjectStore.
// Besides holding objects it can replay scripted metadata snapshots and
// injected failures, and it counts every call, which makes it the backend used
// by retrieval and command tests.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// Op names a backend operation for call counting and error injection.
type Op string

const (
	OpHead        Op = "head"
	OpRestore     Op = "restore"
	OpGet         Op = "get"
	OpPut         Op = "put"
	OpList        Op = "list"
	OpDelete      Op = "delete"
	OpListBuckets Op = "list_buckets"
)

// ongoing descriptors written by RestoreObject and CompleteRestore.
const (
	descriptorOngoing  = `ongoing-request="true"`
	descriptorComplete = `ongoing-request="false", expiry-date="Fri, 21 Dec 2029 00:00:00 GMT"`
)

// RestoreRequest records a single RestoreObject call.
type RestoreRequest struct {
	Key  string
	Tier common.RestoreTier
	Days int32
}

// object represents a stored object with its data and server-side state.
type object struct {
	data         []byte
	storageClass string
	restore      *string
	lastModified time.Time
	// failAfter truncates reads of data and then returns readErr.
	failAfter int
	readErr   error
}

// Memory is a storage backend that stores objects in memory.
type Memory struct {
	mu       sync.RWMutex
	objects  map[string]*object
	buckets  []string
	scripts  map[string][]*common.ObjectMetadata
	errs     map[Op][]error
	calls    map[Op]int
	restores []RestoreRequest
	now      func() time.Time
}

var _ common.ObjectStore = (*Memory)(nil)

// New creates a new Memory storage backend.
func New() *Memory {
	return &Memory{
		objects: make(map[string]*object),
		scripts: make(map[string][]*common.ObjectMetadata),
		errs:    make(map[Op][]error),
		calls:   make(map[Op]int),
		now:     time.Now,
	}
}

// Seed stores data under key with the given raw storage class.
func (m *Memory) Seed(key string, data []byte, storageClass string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &object{
		data:         append([]byte(nil), data...),
		storageClass: storageClass,
		lastModified: m.now(),
	}
}

// SetRestoreDescriptor overwrites the restore descriptor of an existing object.
// A nil descriptor clears it.
func (m *Memory) SetRestoreDescriptor(key string, descriptor *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[key]; ok {
		obj.restore = copyString(descriptor)
	}
}

// CompleteRestore marks an in-flight restore of key as finished.
func (m *Memory) CompleteRestore(key string) {
	d := descriptorComplete
	m.SetRestoreDescriptor(key, &d)
}

// FailReadAfter makes reads of key return n bytes and then err.
func (m *Memory) FailReadAfter(key string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[key]; ok {
		obj.failAfter = n
		obj.readErr = err
	}
}

// SetBuckets sets the names returned by ListBuckets.
func (m *Memory) SetBuckets(names ...string) {
	m.mu.Lock()
	m.buckets = append([]string(nil), names...)
	m.mu.Unlock()
}

// ScriptHead queues metadata snapshots returned by successive HeadObject calls
// for key. The final snapshot keeps being returned once the queue drains to it.
func (m *Memory) ScriptHead(key string, snapshots ...*common.ObjectMetadata) {
	m.mu.Lock()
	m.scripts[key] = append(m.scripts[key], snapshots...)
	m.mu.Unlock()
}

// FailNext queues err to be returned by the next call of op. Queued errors are
// consumed in order; a nil entry lets one call through.
func (m *Memory) FailNext(op Op, errs ...error) {
	m.mu.Lock()
	m.errs[op] = append(m.errs[op], errs...)
	m.mu.Unlock()
}

// Calls returns the number of times op has been invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Restores returns every restore request received so far.
func (m *Memory) Restores() []RestoreRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RestoreRequest(nil), m.restores...)
}

// Count returns the number of objects in storage.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// enter records a call of op and pops any injected error. Callers hold m.mu.
func (m *Memory) enter(ctx context.Context, op Op) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if queue := m.errs[op]; len(queue) > 0 {
		m.errs[op] = queue[1:]
		return queue[0]
	}
	return nil
}

// HeadObject returns the next scripted snapshot for key, or a snapshot of the
// stored object.
func (m *Memory) HeadObject(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	if err := common.ValidateKey(key); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpHead); err != nil {
		return nil, err
	}

	if queue := m.scripts[key]; len(queue) > 0 {
		snapshot := queue[0]
		if len(queue) > 1 {
			m.scripts[key] = queue[1:]
		}
		if snapshot == nil {
			return nil, &common.NotFoundError{Key: key}
		}
		cp := *snapshot
		cp.Key = key
		return &cp, nil
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, &common.NotFoundError{Key: key}
	}

	size := int64(len(obj.data))
	modified := obj.lastModified
	return &common.ObjectMetadata{
		Key:               key,
		StorageClass:      obj.storageClass,
		StorageTier:       common.ParseStorageTier(obj.storageClass),
		RestoreDescriptor: copyString(obj.restore),
		Size:              &size,
		LastModified:      &modified,
		ETag:              fmt.Sprintf("%d-%d", modified.Unix(), size),
	}, nil
}

// RestoreObject records the request and marks a stored object as restoring.
func (m *Memory) RestoreObject(ctx context.Context, key string, tier common.RestoreTier, days int32) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpRestore); err != nil {
		return err
	}
	m.restores = append(m.restores, RestoreRequest{Key: key, Tier: tier, Days: days})

	if obj, ok := m.objects[key]; ok {
		d := descriptorOngoing
		obj.restore = &d
	}
	return nil
}

// GetObject returns a copy of the stored bytes.
func (m *Memory) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := common.ValidateKey(key); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpGet); err != nil {
		return nil, err
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, &common.NotFoundError{Key: key}
	}

	// Return a copy of the data to prevent mutation
	dataCopy := make([]byte, len(obj.data))
	copy(dataCopy, obj.data)

	if obj.readErr != nil {
		n := min(obj.failAfter, len(dataCopy))
		return io.NopCloser(io.MultiReader(bytes.NewReader(dataCopy[:n]), &errReader{err: obj.readErr})), nil
	}
	return io.NopCloser(bytes.NewReader(dataCopy)), nil
}

// PutObject stores body under key as a STANDARD object.
func (m *Memory) PutObject(ctx context.Context, key string, body io.Reader) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	if err := m.enter(ctx, OpPut); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	data, err := io.ReadAll(body)
	if err != nil {
		return &common.TransientError{Op: "put object", Key: key, Err: err}
	}

	m.mu.Lock()
	m.objects[key] = &object{data: data, lastModified: m.now()}
	m.mu.Unlock()
	return nil
}

// ListObjects returns objects whose key starts with prefix, sorted by key.
func (m *Memory) ListObjects(ctx context.Context, prefix string) ([]common.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpList); err != nil {
		return nil, err
	}

	var objects []common.ObjectInfo
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, common.ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
			StorageClass: obj.storageClass,
		})
	}

	// Sort for consistent ordering
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// DeleteObject removes key. Deleting a missing key is not an error, matching S3.
func (m *Memory) DeleteObject(ctx context.Context, key string) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpDelete); err != nil {
		return err
	}
	delete(m.objects, key)
	return nil
}

// ListBuckets returns the names set with SetBuckets, sorted.
func (m *Memory) ListBuckets(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter(ctx, OpListBuckets); err != nil {
		return nil, err
	}
	names := append([]string(nil), m.buckets...)
	sort.Strings(names)
	return names, nil
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) {
	return 0, r.err
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ErrInjected is a convenience error for tests that need an arbitrary failure.
var ErrInjected = errors.New("injected failure")
