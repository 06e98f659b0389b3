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
	"errors"
	"strings"
	"testing"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "YES\n", want: true},
		{name: "no", input: "n\n", def: true, want: false},
		{name: "empty picks default", input: "\n", def: true, want: true},
		{name: "eof picks default", input: "", def: false, want: false},
		{name: "retries invalid input", input: "maybe\ny\n", want: true},
		{name: "answer without newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewPrompter(strings.NewReader(tt.input), &out).Confirm("Download?", tt.def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm = %v, want %v", got, tt.want)
			}
			if !strings.HasPrefix(out.String(), "Download? [") {
				t.Errorf("unexpected prompt %q", out.String())
			}
		})
	}
}

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("new-bucket\n\n"), &out)

	got, err := p.Ask("MGMT_BUCKET", "old")
	if err != nil || got != "new-bucket" {
		t.Errorf("Ask = %q, %v", got, err)
	}
	got, err = p.Ask("MGMT_OBJECT_PREFIX", "media")
	if err != nil || got != "media" {
		t.Errorf("Ask with empty answer = %q, %v", got, err)
	}
	got, err = p.Ask("MGMT_LOCAL_DIR", "")
	if err != nil || got != "" {
		t.Errorf("Ask at eof = %q, %v", got, err)
	}
	if !strings.Contains(out.String(), "MGMT_BUCKET [old]: ") {
		t.Errorf("prompt should show the default: %q", out.String())
	}
}

func TestPrompter_Select(t *testing.T) {
	options := []int{0, 2, 5}

	got, err := NewPrompter(strings.NewReader("2\n"), &bytes.Buffer{}).Select("Which file? [option #]", options)
	if err != nil || got != 2 {
		t.Errorf("Select = %d, %v", got, err)
	}

	for _, input := range []string{"3\n", "abc\n", ""} {
		_, err := NewPrompter(strings.NewReader(input), &bytes.Buffer{}).Select("Which file? [option #]", options)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("input %q: expected ErrInvalidSelection, got %v", input, err)
		}
	}
}
