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
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxKeyLength is the maximum allowed length for object keys
const MaxKeyLength = 1024

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidateKey validates an object key before it is sent to the backend.
// Returns error if the key:
// - Is empty
// - Exceeds maximum length
// - Contains null bytes or control characters
// - Is not valid UTF-8
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if len(key) > MaxKeyLength {
		return &ValidationError{
			Field:   "key",
			Message: fmt.Sprintf("key length exceeds maximum of %d bytes", MaxKeyLength),
		}
	}

	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '\x00':
			return &ValidationError{Field: "key", Message: "key cannot contain null bytes"}
		case '\n', '\r', '\t':
			return &ValidationError{
				Field:   "key",
				Message: fmt.Sprintf("key contains invalid character sequence: %q", string(c)),
			}
		}
	}

	if !utf8.ValidString(key) {
		return &ValidationError{Field: "key", Message: "key must be valid UTF-8"}
	}

	return nil
}

// LocalFileName returns the trailing path segment of key, which names the
// local file an object is downloaded to.
func LocalFileName(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	name := key[strings.LastIndex(key, "/")+1:]
	switch name {
	case "":
		return "", &ValidationError{Field: "key", Message: "key has no trailing file name"}
	case ".", "..":
		return "", &ValidationError{Field: "key", Message: "key cannot end in a path traversal segment"}
	}
	if strings.ContainsRune(name, '\\') {
		return "", &ValidationError{Field: "key", Message: "key file name cannot contain backslashes"}
	}
	return name, nil
}
