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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/memory"
)

func TestTransfer_UploadKey(t *testing.T) {
	tests := []struct {
		name         string
		objectPrefix string
		extraPrefix  string
		localPath    string
		want         string
	}{
		{"no prefix", "", "", "/data/movies/file.mkv", "file.mkv"},
		{"object prefix", "media", "", "/data/movies/file.mkv", "media/file.mkv"},
		{"both prefixes", "media", "tv", "file.tar.gz", "media/tv/file.tar.gz"},
		{"extra only", "", "tv", "file.mkv", "tv/file.mkv"},
		{"trailing slash", "media/", "", "file.mkv", "media/file.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransfer(memory.New(), "", tt.objectPrefix, nil)
			assert.Equal(t, tt.want, tr.UploadKey(tt.localPath, tt.extraPrefix))
		})
	}
}

func TestTransfer_Upload(t *testing.T) {
	store := memory.New()
	src := filepath.Join(t.TempDir(), "show.mkv")
	require.NoError(t, os.WriteFile(src, []byte("episode"), 0o600))
	tr := NewTransfer(store, "", "media", nil)

	key, err := tr.Upload(context.Background(), src, "tv")
	require.NoError(t, err)
	assert.Equal(t, "media/tv/show.mkv", key)

	meta, err := store.HeadObject(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, common.TierStandard, meta.StorageTier)

	rc, err := store.GetObject(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "episode", string(data))
}

func TestTransfer_UploadErrors(t *testing.T) {
	dir := t.TempDir()
	tr := NewTransfer(memory.New(), "", "", nil)

	_, err := tr.Upload(context.Background(), filepath.Join(dir, "missing.mkv"), "")
	assert.Error(t, err)

	_, err = tr.Upload(context.Background(), dir, "")
	assert.ErrorContains(t, err, "is a directory")

	store := memory.New()
	store.FailNext(memory.OpPut, memory.ErrInjected)
	src := filepath.Join(dir, "a.mkv")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o600))
	_, err = NewTransfer(store, "", "", nil).Upload(context.Background(), src, "")
	assert.True(t, common.IsTransient(err), "got %v", err)
}

func TestTransfer_Download(t *testing.T) {
	store := memory.New()
	store.Seed("a/b/c/movie.mkv", []byte("frames"), "")
	dir := t.TempDir()
	tr := NewTransfer(store, dir, "", nil)

	path, n, err := tr.Download(context.Background(), "a/b/c/movie.mkv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "movie.mkv"), path)
	assert.EqualValues(t, 6, n)
}

func TestTransfer_DownloadRejectsUnsafeNames(t *testing.T) {
	store := memory.New()
	store.Seed("media/", []byte("x"), "")
	tr := NewTransfer(store, t.TempDir(), "", nil)

	_, _, err := tr.Download(context.Background(), "media/")
	assert.Error(t, err)
	assert.Equal(t, 0, store.Calls(memory.OpGet))
}

func TestTransfer_DownloadNotFound(t *testing.T) {
	dir := t.TempDir()
	tr := NewTransfer(memory.New(), dir, "", nil)

	_, _, err := tr.Download(context.Background(), "missing.mkv")
	assert.True(t, common.IsNotFound(err))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestTransfer_DownloadCanceled(t *testing.T) {
	store := memory.New()
	store.Seed("k.mkv", []byte("data"), "")
	dir := t.TempDir()
	tr := NewTransfer(store, dir, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := tr.Download(ctx, "k.mkv")
	assert.ErrorIs(t, err, context.Canceled)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
