// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package walk implements C1: the file walker and ignore filter. It
// yields a finite, deduplicated, sorted sequence of (relativePath,
// bytes) pairs from a repository root, suppressing paths that match
// configured segment, suffix, or extension patterns.
package walk

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	ierrors "github.com/gitnexus/engine/internal/errors"
)

// File is one emitted (path, bytes) pair plus the language tag
// resolved from its extension.
type File struct {
	Path     string // root-relative, forward-slash normalized
	Bytes    []byte
	Language string
	Size     int64
}

// IgnoreRules are the three configured pattern sets spec §4.1
// describes: exact segment names, trailing suffixes, and file
// extensions.
type IgnoreRules struct {
	// Segments suppresses any path component exactly equal to one of
	// these names (e.g. ".git", "node_modules", "vendor", "dist",
	// "build", "target", "__pycache__", ".venv").
	Segments []string
	// Suffixes suppresses paths whose base name ends with one of these
	// strings (e.g. "~", ".swp", ".swo", ".orig").
	Suffixes []string
	// Extensions suppresses paths whose extension (including the dot)
	// matches one of these (binary/media/compiled artifacts).
	Extensions []string
	// Globs are additional doublestar-style patterns (e.g. from a
	// project's own ignore configuration).
	Globs []string
}

// DefaultIgnoreRules is the hand-curated default set. Spec §9 leaves
// exact composition to the implementer; this mirrors what the teacher
// and the rest of the pack treat as universally-noisy paths.
func DefaultIgnoreRules() IgnoreRules {
	return IgnoreRules{
		Segments: []string{
			".git", ".hg", ".svn", ".gitnexus",
			"node_modules", "vendor", "bower_components",
			"dist", "build", "out", "target", "bin", "obj",
			"__pycache__", ".venv", "venv", ".tox",
			".idea", ".vscode", ".DS_Store",
			"coverage", ".next", ".nuxt", ".cache",
		},
		Suffixes: []string{"~", ".swp", ".swo", ".orig", ".bak"},
		Extensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".svg", ".webp",
			".pdf", ".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar",
			".exe", ".dll", ".so", ".dylib", ".a", ".o", ".class", ".jar",
			".woff", ".woff2", ".ttf", ".eot", ".otf",
			".mp3", ".mp4", ".mov", ".avi", ".wav", ".flac",
			".db", ".sqlite", ".sqlite3",
			".lock",
		},
	}
}

// Walker emits files from a repository root, filtered by IgnoreRules.
type Walker struct {
	fs     afs.Service
	rules  IgnoreRules
	logger *slog.Logger
	// MaxFileSize skips any file larger than this many bytes (0 means
	// unlimited). Spec §4.4 default is 10 MiB for the parser; C1 itself
	// has no mandated default, so this is left to the caller.
	MaxFileSize int64
}

// New returns a Walker using the real local/remote file system via
// viant/afs, so the rest of the pipeline can treat "repository root"
// as an abstract URL (local path, zip, or cloud object store) per
// spec §1's framing of the source layer as out-of-scope plumbing.
func New(rules IgnoreRules, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{fs: afs.New(), rules: rules, logger: logger}
}

// Walk returns the sorted, deduplicated file list for root. It never
// returns partial results mixed with an error: IoError failures on
// the root itself are fatal; unreadable individual files are skipped
// with a warning and do not fail the walk.
func (w *Walker) Walk(ctx context.Context, root string) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.Fatal("cannot resolve repository root", err.Error(), "Pass an existing directory path.", err)
	}
	if info, statErr := os.Stat(absRoot); statErr != nil || !info.IsDir() {
		e := statErr
		if e == nil {
			e = os.ErrInvalid
		}
		return nil, ierrors.Fatal("repository root is not a readable directory", absRoot, "Pass an existing directory path.", e)
	}

	var files []File
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		rel := filepath.ToSlash(filepath.Join(filepath.FromSlash(parent), info.Name()))

		if info.IsDir() {
			if w.shouldExclude(rel) {
				return false, nil // false: do not descend
			}
			return true, nil
		}

		if w.shouldExclude(rel) {
			return true, nil
		}
		if w.MaxFileSize > 0 && info.Size() > w.MaxFileSize {
			w.logger.Warn("walk.skip.too_large", "path", rel, "size", info.Size(), "limit", w.MaxFileSize)
			return true, nil
		}

		fileURL := url.Join(baseURL, parent, info.Name())
		data, readErr := w.fs.DownloadWithURL(ctx, fileURL)
		if readErr != nil {
			w.logger.Warn("walk.skip.unreadable", "path", rel, "err", readErr)
			return true, nil
		}

		files = append(files, File{
			Path:     rel,
			Bytes:    data,
			Language: detectLanguage(rel),
			Size:     info.Size(),
		})
		return true, nil
	}
	walkErr := w.fs.Walk(ctx, absRoot, visitor)
	if walkErr != nil {
		return nil, ierrors.Fatal("failed to walk repository", walkErr.Error(), "Check directory permissions.", walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return dedup(files), nil
}

// dedup removes duplicate paths, keeping the first occurrence — afs
// walk should never produce duplicates for a local filesystem, but
// remote/zip sources are not guaranteed to, so the contract ("finite,
// deduplicated, sorted sequence") is enforced explicitly.
func dedup(files []File) []File {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		out = append(out, f)
	}
	return out
}

// ShouldExclude reports whether relPath matches one of w's ignore
// rules, the same check Walk applies to every candidate it visits.
// Callers that obtain paths from somewhere other than a fresh Walk
// (e.g. an incremental diff's changed-file list) use this to apply
// the identical ignore-filter closure spec §4.1 requires.
func (w *Walker) ShouldExclude(relPath string) bool {
	return w.shouldExclude(relPath)
}

func (w *Walker) shouldExclude(relPath string) bool {
	base := filepath.Base(relPath)
	for _, seg := range w.rules.Segments {
		if base == seg {
			return true
		}
		if strings.Contains("/"+relPath+"/", "/"+seg+"/") {
			return true
		}
	}
	for _, suf := range w.rules.Suffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	ext := filepath.Ext(base)
	for _, e := range w.rules.Extensions {
		if ext == e {
			return true
		}
	}
	for _, g := range w.rules.Globs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			return true
		}
	}
	return false
}

// extensionLanguage is the exact-match extension→language table spec
// §4.4 requires. Unknown extensions resolve to "".
var extensionLanguage = map[string]string{
	".ts": "typescript", ".tsx": "typescript",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".py": "python", ".pyi": "python",
	".java": "java",
	".c": "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp", ".hh": "cpp",
	".cs": "csharp",
	".go": "go",
	".rs": "rust",
	".php": "php",
	".swift": "swift",
}

func detectLanguage(path string) string {
	return extensionLanguage[strings.ToLower(filepath.Ext(path))]
}

// LanguageForExtension exposes the table to other packages (C4
// dispatch, C5 candidate-extension lists) without re-deriving it.
func LanguageForExtension(ext string) (string, bool) {
	lang, ok := extensionLanguage[strings.ToLower(ext)]
	return lang, ok
}
