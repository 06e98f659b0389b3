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

package media

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Compression selects the archive format for uploads.
type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionZip  Compression = "zip"
)

// ParseCompression validates a compression name.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case CompressionGzip, CompressionZip:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
	}
}

// ArchivePath returns the path Archive writes for target.
func ArchivePath(target string, c Compression) (string, error) {
	target = filepath.Clean(target)
	switch c {
	case CompressionGzip:
		return target + ".tar.gz", nil
	case CompressionZip:
		info, err := os.Stat(target)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return target + ".zip", nil
		}
		return strings.TrimSuffix(target, filepath.Ext(target)) + ".zip", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCompression, string(c))
	}
}

// Archive packs target (a file or directory) next to itself and returns the
// archive path. gzip produces a .tar.gz rooted at the target's base name; zip
// produces a .zip holding the directory's contents, or the single file. A
// failed archive is removed.
func Archive(target string, c Compression) (archivePath string, err error) {
	archivePath, err = ArchivePath(target, c)
	if err != nil {
		return "", err
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(archivePath)
			archivePath = ""
		}
	}()

	switch c {
	case CompressionGzip:
		err = writeTarGz(out, filepath.Clean(target))
	case CompressionZip:
		err = writeZip(out, filepath.Clean(target))
	}
	return archivePath, err
}

func writeTarGz(w io.Writer, target string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	base := filepath.Dir(target)

	err := filepath.WalkDir(target, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		return copyFile(tw, p)
	})
	if err != nil {
		return fmt.Errorf("write tar: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	return gz.Close()
}

func writeZip(w io.Writer, target string) error {
	zw := zip.NewWriter(w)

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	root := target
	if !info.IsDir() {
		root = filepath.Dir(target)
	}

	err = filepath.WalkDir(target, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		return copyFile(fw, p)
	})
	if err != nil {
		return fmt.Errorf("write zip: %w", err)
	}
	return zw.Close()
}

func copyFile(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
