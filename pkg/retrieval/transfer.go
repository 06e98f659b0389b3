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
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// Transfer moves object bytes between the backend and the local filesystem.
// It performs no tier checks.
type Transfer struct {
	store        common.ObjectStore
	destDir      string
	objectPrefix string
	logger       adapters.Logger
}

// NewTransfer creates a Transfer writing downloads to destDir and prefixing
// upload keys with objectPrefix.
func NewTransfer(store common.ObjectStore, destDir, objectPrefix string, logger adapters.Logger) *Transfer {
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}
	return &Transfer{store: store, destDir: destDir, objectPrefix: objectPrefix, logger: logger}
}

// Download writes the object body to destDir under the key's trailing path
// segment and returns the path and byte count. The body is staged in a
// temporary file that is removed on any failure, so a failed download never
// leaves a partial file behind or clobbers an existing one.
func (t *Transfer) Download(ctx context.Context, key string) (string, int64, error) {
	name, err := common.LocalFileName(key)
	if err != nil {
		return "", 0, err
	}
	dest := filepath.Join(t.destDir, name)

	body, err := t.store.GetObject(ctx, key)
	if err != nil {
		return "", 0, classify("get object", key, err)
	}
	defer func() { _ = body.Close() }()

	dir := t.destDir
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".part-*")
	if err != nil {
		return "", 0, fmt.Errorf("create download file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body})
	if err != nil {
		return "", 0, classify("get object", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("close download file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", 0, fmt.Errorf("move download into place: %w", err)
	}
	committed = true

	adapters.FromContext(ctx, t.logger).Info(ctx, "downloaded object",
		adapters.Field{Key: "key", Value: key},
		adapters.Field{Key: "path", Value: dest},
		adapters.Field{Key: "size", Value: humanize.Bytes(uint64(n))})
	return dest, n, nil
}

// UploadKey computes the object key for a local file: the configured prefix,
// then extraPrefix, then the file's base name.
func (t *Transfer) UploadKey(localPath, extraPrefix string) string {
	return path.Join(t.objectPrefix, extraPrefix, filepath.Base(localPath))
}

// Upload streams the local file to the backend and returns the key it was
// written to. Uploads always land in the default storage class.
func (t *Transfer) Upload(ctx context.Context, localPath, extraPrefix string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("upload %s: is a directory", localPath)
	}

	key := t.UploadKey(localPath, extraPrefix)
	if err := t.store.PutObject(ctx, key, f); err != nil {
		return "", classify("put object", key, err)
	}

	adapters.FromContext(ctx, t.logger).Info(ctx, "uploaded object",
		adapters.Field{Key: "key", Value: key},
		adapters.Field{Key: "path", Value: localPath},
		adapters.Field{Key: "size", Value: humanize.Bytes(uint64(info.Size()))})
	return key, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
