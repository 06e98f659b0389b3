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
	"errors"
	"fmt"
)

var (
	// Configuration errors

	// ErrNotConfigured is returned when a storage backend is not properly configured.
	ErrNotConfigured = errors.New("not configured")

	// ErrBucketNotSet is returned when the required bucket is not set.
	ErrBucketNotSet = errors.New("bucket not set")

	// Storage operation errors

	// ErrStorageRequired is returned when a storage backend is required but not provided.
	ErrStorageRequired = errors.New("storage backend is required")

	// ErrKeyNotFound is returned when a key is not found in storage.
	ErrKeyNotFound = errors.New("key not found")

	// ErrEmptyKey is returned when an operation is given an empty object key.
	ErrEmptyKey = errors.New("object key is empty")

	// Retrieval errors

	// ErrTierNotRestorable is returned when an object's tier or restore state is ambiguous.
	ErrTierNotRestorable = errors.New("tier not restorable / ambiguous state")

	// ErrUnexpectedRestoreStatus is returned when polling observes a status other than incomplete or complete.
	ErrUnexpectedRestoreStatus = errors.New("unexpected restore status during poll")

	// ErrPollTimeout is returned when a restore does not complete within the configured maximum wait.
	ErrPollTimeout = errors.New("restore did not complete before poll timeout")

	// ErrRestoreAlreadyInProgress is returned by a backend that rejects a restore request
	// because one is already running for the object.
	ErrRestoreAlreadyInProgress = errors.New("restore already in progress")
)

// NotFoundError indicates the object does not exist in the bucket.
type NotFoundError struct {
	Key string
}

// Error implements the 'error' interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object '%s' not found", e.Key)
}

// Unwrap lets errors.Is match ErrKeyNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrKeyNotFound
}

// TransientError wraps a network or backend failure for a single operation.
type TransientError struct {
	Op  string
	Key string
	Err error
}

// Error implements the 'error' interface.
func (e *TransientError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// AmbiguousStateError reports a storage class or restore descriptor that does
// not match any recognized pattern.
type AmbiguousStateError struct {
	Key          string
	StorageClass string
	Descriptor   string
}

// Error implements the 'error' interface.
func (e *AmbiguousStateError) Error() string {
	return fmt.Sprintf("object '%s': %v (storage class %q, restore %q)",
		e.Key, ErrTierNotRestorable, e.StorageClass, e.Descriptor)
}

// Unwrap lets errors.Is match ErrTierNotRestorable.
func (e *AmbiguousStateError) Unwrap() error {
	return ErrTierNotRestorable
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsTransient reports whether err is or wraps a TransientError.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsAmbiguousState reports whether err is or wraps an AmbiguousStateError.
func IsAmbiguousState(err error) bool {
	var ambiguous *AmbiguousStateError
	return errors.As(err, &ambiguous)
}
