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

// Package media works with the local media directory: finding media files,
// keyword matching, packaging upload targets into archives and moving
// uploaded originals out of the way.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrLocalDirNotFound is returned when the configured media directory does not exist.
	ErrLocalDirNotFound = errors.New("local media directory not found")

	// ErrUnsupportedCompression is returned for a compression name other than gzip or zip.
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrAlreadyCompleted is returned when the completed directory already holds the target.
	ErrAlreadyCompleted = errors.New("target already exists in completed directory")
)

// CompletedDir is the directory uploaded originals are moved into.
const CompletedDir = "completed"

// mediaExtensions are matched case-insensitively.
var mediaExtensions = map[string]bool{
	".rar": true,
	".mkv": true,
	".mp4": true,
}

// excludedMarkers drop subtitle and sample files.
var excludedMarkers = []string{"subs", "sample"}

// Directory is a local media directory.
type Directory struct {
	root string
}

// NewDirectory returns the media directory at root, which must exist.
func NewDirectory(root string) (*Directory, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrLocalDirNotFound, root)
	}
	return &Directory{root: root}, nil
}

// Root returns the directory path.
func (d *Directory) Root() string {
	return d.root
}

// ListMediaFiles walks the directory and returns every media file as its last
// two path segments ("parent/file.mkv"), sorted. Exclusion markers are matched
// against the path below the root.
func (d *Directory) ListMediaFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil || !IsMediaFile(rel) {
			return nil
		}
		files = append(files, lastSegments(p, 2))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk media directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// IsMediaFile reports whether p has a media extension and does not look like
// a subtitle or sample file.
func IsMediaFile(p string) bool {
	if !mediaExtensions[strings.ToLower(filepath.Ext(p))] {
		return false
	}
	lower := strings.ToLower(p)
	for _, marker := range excludedMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func lastSegments(p string, n int) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	if len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	return strings.Join(parts, "/")
}

// MatchKeyword reports whether s contains keyword, ignoring case.
func MatchKeyword(keyword, s string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(keyword))
}

// FilterKeyword returns the items containing keyword, ignoring case.
func FilterKeyword(keyword string, items []string) []string {
	var matches []string
	for _, item := range items {
		if MatchKeyword(keyword, item) {
			matches = append(matches, item)
		}
	}
	return matches
}

// ListHere returns the sorted entry names of dir.
func ListHere(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MoveToCompleted moves target into a completed/ directory next to it and
// returns the new path.
func MoveToCompleted(target string) (string, error) {
	dir := filepath.Join(filepath.Dir(target), CompletedDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create completed directory: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(target))
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyCompleted, dest)
	}
	if err := os.Rename(target, dest); err != nil {
		return "", fmt.Errorf("move to completed: %w", err)
	}
	return dest, nil
}

// SkipUpload reports whether an entry should be ignored by a bulk upload.
func SkipUpload(name string) bool {
	switch name {
	case ".DS_Store", CompletedDir:
		return true
	}
	return false
}
