// Package walker scans a source tree for regular files, applying ignore
// patterns, and computes whole-file digests with a bounded worker pool.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

// FileEntry describes one regular file found during a scan. Path is
// relative to the scan root and slash-separated.
type FileEntry struct {
	Path    string
	AbsPath string
	Size    int64
	ModTime time.Time
	Digest  string
}

// Options control which files a scan visits and how digests are computed.
type Options struct {
	// IgnorePatterns are path.Match patterns tested against both the
	// file's base name and its slash-separated relative path.
	IgnorePatterns []string

	// IncludeHidden includes dot-files and descends into dot-directories.
	IncludeHidden bool

	// HashAlgorithm selects the whole-file digest. Empty means sha256.
	HashAlgorithm string

	// Workers bounds the digest pool. Zero means runtime.NumCPU.
	Workers int

	// Warn receives one message per file dropped because it could not
	// be read for digesting. Nil discards the messages.
	Warn func(format string, args ...interface{})
}

func (o Options) warnf(format string, args ...interface{}) {
	if o.Warn != nil {
		o.Warn(format, args...)
	}
}

// Scan walks root and returns its regular files in sorted path order,
// each with a whole-file digest. Digests are computed concurrently but
// the result order is deterministic.
func Scan(ctx context.Context, root string, opts Options) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", root)
	}

	var entries []FileEntry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if (hidden && !opts.IncludeHidden) || matchesAny(opts.IgnorePatterns, rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if (hidden && !opts.IncludeHidden) || matchesAny(opts.IgnorePatterns, rel, d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path:    rel,
			AbsPath: p,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	return digestAll(ctx, entries, opts)
}

// digestAll fills in the Digest field of every entry using a worker
// pool. Each worker writes only its own index, so no locking is needed.
// A file that cannot be read, for example deleted or made unreadable
// between the walk and the digest, is dropped with a warning rather
// than failing the scan; only cancellation aborts.
func digestAll(ctx context.Context, entries []FileEntry, opts Options) ([]FileEntry, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	failures := make([]error, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range entries {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := hashing.SumFile(entries[i].AbsPath, opts.HashAlgorithm)
			if err != nil {
				failures[i] = err
				return nil
			}
			entries[i].Digest = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := entries[:0]
	for i := range entries {
		if failures[i] != nil {
			opts.warnf("skipping %s: %v", entries[i].Path, failures[i])
			continue
		}
		kept = append(kept, entries[i])
	}
	return kept, nil
}

func matchesAny(patterns []string, rel, base string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
