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

package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

const (
	codeNoSuchKey                = "NoSuchKey"
	codeNotFound                 = "NotFound"
	codeRestoreAlreadyInProgress = "RestoreAlreadyInProgress"
)

// handleError converts an SDK error into the error taxonomy used by the rest of
// the tool. Context cancellation passes through untouched.
func handleError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return &common.NotFoundError{Key: key}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case codeNoSuchKey, codeNotFound:
			return &common.NotFoundError{Key: key}
		case codeRestoreAlreadyInProgress:
			return fmt.Errorf("%w: %s", common.ErrRestoreAlreadyInProgress, key)
		}
	}

	return &common.TransientError{Op: op, Key: key, Err: err}
}
