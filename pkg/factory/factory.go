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

// Package factory builds object-storage backends by name.
package factory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// StorageCreator is a function that creates a storage backend.
type StorageCreator func(ctx context.Context, settings map[string]string, logger adapters.Logger) (common.ObjectStore, error)

var (
	mu              sync.RWMutex
	storageRegistry = make(map[string]StorageCreator)
)

// RegisterStorage registers a storage backend creator.
func RegisterStorage(backendType string, creator StorageCreator) {
	mu.Lock()
	defer mu.Unlock()
	storageRegistry[backendType] = creator
}

// NewStorage creates a new storage backend based on the given type.
func NewStorage(ctx context.Context, backendType string, settings map[string]string, logger adapters.Logger) (common.ObjectStore, error) {
	mu.RLock()
	creator, exists := storageRegistry[backendType]
	mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backendType)
	}
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}
	return creator(ctx, settings, logger)
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(storageRegistry))
	for name := range storageRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
