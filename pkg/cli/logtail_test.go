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

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mgmt.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		n    int
		want string
	}{
		{n: 2, want: "three,four"},
		{n: 10, want: "one,two,three,four"},
		{n: 0, want: "one,two,three,four"},
	}
	for _, tt := range tests {
		lines, err := TailLines(path, tt.n)
		if err != nil {
			t.Fatalf("TailLines(%d) failed: %v", tt.n, err)
		}
		if got := strings.Join(lines, ","); got != tt.want {
			t.Errorf("TailLines(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	if _, err := TailLines(filepath.Join(t.TempDir(), "missing.log"), 1); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

// syncBuffer guards a buffer written by FollowLog and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mgmt.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- FollowLog(ctx, path, out) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "new line") {
		if time.Now().After(deadline) {
			t.Fatalf("appended line not followed, got %q", out.String())
		}
		// Keep appending until the watcher is registered and sees a write.
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("new line\n"); err != nil {
			t.Fatal(err)
		}
		_ = f.Close()
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("FollowLog returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FollowLog did not stop after cancel")
	}

	if strings.Contains(out.String(), "old line") {
		t.Errorf("existing content should not be replayed: %q", out.String())
	}
}
