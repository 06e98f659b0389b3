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

package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

func TestNew(t *testing.T) {
	storage := New()
	if storage == nil {
		t.Fatal("New() returned nil")
	}
	if storage.Count() != 0 {
		t.Fatalf("expected empty store, got %d objects", storage.Count())
	}
}

func TestPutAndGet(t *testing.T) {
	storage := New()
	ctx := context.Background()

	testData := []byte("hello world")
	if err := storage.PutObject(ctx, "test-key", bytes.NewReader(testData)); err != nil {
		t.Fatalf("PutObject() returned error: %v", err)
	}

	reader, err := storage.GetObject(ctx, "test-key")
	if err != nil {
		t.Fatalf("GetObject() returned error: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("io.ReadAll() returned error: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Fatalf("GetObject() returned wrong data: got %q, want %q", data, testData)
	}
	if storage.Calls(OpPut) != 1 || storage.Calls(OpGet) != 1 {
		t.Errorf("unexpected call counts: put=%d get=%d", storage.Calls(OpPut), storage.Calls(OpGet))
	}
}

func TestGetNotFound(t *testing.T) {
	storage := New()
	_, err := storage.GetObject(context.Background(), "missing")
	if !common.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestHeadObjectFromStoredObject(t *testing.T) {
	storage := New()
	storage.Seed("archive/movie.mkv", []byte("12345"), "DEEP_ARCHIVE")

	meta, err := storage.HeadObject(context.Background(), "archive/movie.mkv")
	if err != nil {
		t.Fatalf("HeadObject() returned error: %v", err)
	}
	if meta.StorageTier != common.TierDeepArchive {
		t.Errorf("expected DEEP_ARCHIVE, got %s", meta.StorageTier)
	}
	if meta.SizeOrZero() != 5 {
		t.Errorf("expected size 5, got %d", meta.SizeOrZero())
	}
	if meta.RestoreStatus() != common.RestoreNone {
		t.Errorf("expected no restore, got %s", meta.RestoreStatus())
	}
}

func TestHeadObjectNotFound(t *testing.T) {
	storage := New()
	if _, err := storage.HeadObject(context.Background(), "nope"); !common.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRestoreLifecycle(t *testing.T) {
	storage := New()
	ctx := context.Background()
	storage.Seed("a.mkv", []byte("x"), "GLACIER")

	if err := storage.RestoreObject(ctx, "a.mkv", common.RestoreTierExpedited, 10); err != nil {
		t.Fatalf("RestoreObject() returned error: %v", err)
	}

	meta, _ := storage.HeadObject(ctx, "a.mkv")
	if meta.RestoreStatus() != common.RestoreIncomplete {
		t.Errorf("expected incomplete after restore, got %s", meta.RestoreStatus())
	}

	storage.CompleteRestore("a.mkv")
	meta, _ = storage.HeadObject(ctx, "a.mkv")
	if meta.RestoreStatus() != common.RestoreComplete {
		t.Errorf("expected complete, got %s", meta.RestoreStatus())
	}

	restores := storage.Restores()
	if len(restores) != 1 {
		t.Fatalf("expected 1 restore request, got %d", len(restores))
	}
	if restores[0].Tier != common.RestoreTierExpedited || restores[0].Days != 10 {
		t.Errorf("unexpected restore request: %+v", restores[0])
	}
}

func TestScriptHead(t *testing.T) {
	storage := New()
	ctx := context.Background()
	ongoing := `ongoing-request="true"`
	done := `ongoing-request="false"`

	storage.ScriptHead("k",
		&common.ObjectMetadata{StorageTier: common.TierGlacier, RestoreDescriptor: &ongoing},
		&common.ObjectMetadata{StorageTier: common.TierGlacier, RestoreDescriptor: &done},
	)

	first, err := storage.HeadObject(ctx, "k")
	if err != nil {
		t.Fatalf("HeadObject() returned error: %v", err)
	}
	if first.RestoreStatus() != common.RestoreIncomplete || first.Key != "k" {
		t.Errorf("unexpected first snapshot: %+v", first)
	}

	for i := 0; i < 3; i++ {
		next, _ := storage.HeadObject(ctx, "k")
		if next.RestoreStatus() != common.RestoreComplete {
			t.Errorf("call %d: expected final snapshot to repeat, got %s", i, next.RestoreStatus())
		}
	}
	if storage.Calls(OpHead) != 4 {
		t.Errorf("expected 4 head calls, got %d", storage.Calls(OpHead))
	}
}

func TestFailNext(t *testing.T) {
	storage := New()
	ctx := context.Background()
	storage.Seed("k", []byte("x"), "")

	storage.FailNext(OpHead, ErrInjected, nil)

	if _, err := storage.HeadObject(ctx, "k"); !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, err := storage.HeadObject(ctx, "k"); err != nil {
		t.Fatalf("expected nil entry to let call through, got %v", err)
	}
	if _, err := storage.HeadObject(ctx, "k"); err != nil {
		t.Fatalf("expected drained queue, got %v", err)
	}
}

func TestFailReadAfter(t *testing.T) {
	storage := New()
	storage.Seed("k", []byte("0123456789"), "")
	storage.FailReadAfter("k", 4, ErrInjected)

	rc, err := storage.GetObject(context.Background(), "k")
	if err != nil {
		t.Fatalf("GetObject() returned error: %v", err)
	}
	data, err := io.ReadAll(rc)
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected read error, got %v", err)
	}
	if string(data) != "0123" {
		t.Errorf("expected partial data, got %q", data)
	}
}

func TestCanceledContext(t *testing.T) {
	storage := New()
	storage.Seed("k", []byte("x"), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := storage.HeadObject(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestListObjects(t *testing.T) {
	storage := New()
	ctx := context.Background()
	storage.Seed("media/b.mkv", []byte("bb"), "GLACIER")
	storage.Seed("media/a.mkv", []byte("a"), "")
	storage.Seed("other/c.mkv", []byte("c"), "")

	objects, err := storage.ListObjects(ctx, "media/")
	if err != nil {
		t.Fatalf("ListObjects() returned error: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}
	if objects[0].Key != "media/a.mkv" || objects[1].Key != "media/b.mkv" {
		t.Errorf("expected sorted keys, got %v", objects)
	}
	if objects[1].StorageClass != "GLACIER" || objects[1].Size != 2 {
		t.Errorf("unexpected object info: %+v", objects[1])
	}
}

func TestDeleteObject(t *testing.T) {
	storage := New()
	ctx := context.Background()
	storage.Seed("k", []byte("x"), "")

	if err := storage.DeleteObject(ctx, "k"); err != nil {
		t.Fatalf("DeleteObject() returned error: %v", err)
	}
	if storage.Count() != 0 {
		t.Errorf("expected empty store after delete")
	}
	if err := storage.DeleteObject(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestListBuckets(t *testing.T) {
	storage := New()
	storage.SetBuckets("media", "backups", "archive")

	names, err := storage.ListBuckets(context.Background())
	if err != nil {
		t.Fatalf("ListBuckets() returned error: %v", err)
	}
	if strings.Join(names, ",") != "archive,backups,media" {
		t.Errorf("unexpected bucket names: %v", names)
	}
}

func TestEmptyKey(t *testing.T) {
	storage := New()
	ctx := context.Background()

	if _, err := storage.HeadObject(ctx, ""); !errors.Is(err, common.ErrEmptyKey) {
		t.Errorf("HeadObject: expected ErrEmptyKey, got %v", err)
	}
	if err := storage.PutObject(ctx, "", strings.NewReader("x")); !errors.Is(err, common.ErrEmptyKey) {
		t.Errorf("PutObject: expected ErrEmptyKey, got %v", err)
	}
}
