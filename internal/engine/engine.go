// Package engine orchestrates snapshots: scanning the source tree,
// chunking changed files into the content-addressed store, persisting
// manifests, and restoring, comparing, verifying and deleting snapshots.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/substantialcattle5/stillsuit/internal/chunker"
	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
	"github.com/substantialcattle5/stillsuit/internal/store"
	"github.com/substantialcattle5/stillsuit/internal/walker"
)

// Logger receives per-file progress detail and skip warnings. The
// progress manager satisfies it; the default discards everything.
type Logger interface {
	PrintVerbose(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Add(n int64)
}

type discardLogger struct{}

func (discardLogger) PrintVerbose(string, ...interface{}) {}
func (discardLogger) Warnf(string, ...interface{})        {}
func (discardLogger) Add(int64)                           {}

// Engine ties the chunker, chunk store and manifest store together
// behind the vault's configuration.
type Engine struct {
	cfg       *config.VaultConfig
	vaultRoot string
	chunks    *store.Store
	snapshots *snapshot.Store
	chunker   chunker.Chunker
	log       Logger
}

// New opens the stores under vaultRoot and builds the configured chunker.
func New(cfg *config.VaultConfig, vaultRoot string) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chunks, err := store.Open(vaultRoot, cfg.Chunking.HashAlgorithm, cfg.Compression)
	if err != nil {
		return nil, err
	}
	snapshots, err := snapshot.NewStore(vaultRoot)
	if err != nil {
		return nil, err
	}
	c, err := chunker.New(cfg.Chunking)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		vaultRoot: vaultRoot,
		chunks:    chunks,
		snapshots: snapshots,
		chunker:   c,
		log:       discardLogger{},
	}, nil
}

// SetLogger routes progress detail and warnings to l.
func (e *Engine) SetLogger(l Logger) {
	if l != nil {
		e.log = l
	}
}

// NewSnapshotID returns a fresh snapshot id. The UTC timestamp prefix
// makes ids sort chronologically; the uuid suffix keeps them unique
// within a second.
func NewSnapshotID(now time.Time) string {
	return fmt.Sprintf("%s-%s",
		now.UTC().Format("20060102T150405"),
		uuid.NewString()[:8])
}

// CreateSnapshot scans sourceRoot, stores chunks for added and modified
// files, re-references chunks of unchanged files, and persists a new
// manifest chained to the previous snapshot of the same source root.
func (e *Engine) CreateSnapshot(ctx context.Context, sourceRoot string, tags []string) (*snapshot.Manifest, error) {
	absRoot, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, &snapshot.SnapshotError{Op: "create", Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &snapshot.SnapshotError{Op: "create",
			Err: fmt.Errorf("source %s: %w", absRoot, err)}
	}
	if !info.IsDir() {
		return nil, &snapshot.SnapshotError{Op: "create",
			Err: fmt.Errorf("source %s is not a directory", absRoot)}
	}

	parentID, err := e.snapshots.LatestID(absRoot)
	if err != nil {
		return nil, err
	}
	parentFiles := map[string]snapshot.FileRecord{}
	if parentID != "" {
		parent, err := e.snapshots.Get(parentID)
		if err != nil {
			return nil, err
		}
		parentFiles = parent.FileMap()
	}

	entries, err := walker.Scan(ctx, absRoot, walker.Options{
		IgnorePatterns: e.cfg.Scan.IgnorePatterns,
		IncludeHidden:  e.cfg.Scan.IncludeHidden,
		HashAlgorithm:  e.cfg.Chunking.HashAlgorithm,
		Warn:           e.log.Warnf,
	})
	if err != nil {
		return nil, &snapshot.SnapshotError{Op: "create", Err: err}
	}

	scanned := make(map[string]snapshot.FileRecord, len(entries))
	for _, entry := range entries {
		scanned[entry.Path] = snapshot.FileRecord{
			Path:         entry.Path,
			Size:         entry.Size,
			Digest:       entry.Digest,
			ModifiedTime: entry.ModTime,
		}
	}
	changes := snapshot.Diff(parentFiles, scanned)

	var files []snapshot.FileRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, &snapshot.SnapshotError{Op: "create", Err: err}
		}

		if parentFile, ok := parentFiles[entry.Path]; ok && parentFile.Digest == entry.Digest {
			record, err := e.reuseUnchanged(parentFile, entry)
			if err != nil {
				return nil, err
			}
			files = append(files, record)
			e.log.Add(record.Size)
			continue
		}

		record, err := e.storeChangedFile(entry)
		if err != nil {
			e.log.Warnf("skipping %s: %v", entry.Path, err)
			continue
		}
		files = append(files, record)
		e.log.Add(record.Size)
	}

	manifest := &snapshot.Manifest{
		ID:         NewSnapshotID(time.Now()),
		Timestamp:  time.Now().UTC(),
		SourceRoot: absRoot,
		ParentID:   parentID,
		Files:      files,
		Changes:    changes,
		Tags:       tags,
	}
	if err := e.snapshots.Put(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// reuseUnchanged carries the parent's chunk list into the new snapshot
// and bumps each chunk's reference count, so counts keep tracking one
// reference per (snapshot, file, position) without re-reading the file.
func (e *Engine) reuseUnchanged(parentFile snapshot.FileRecord, entry walker.FileEntry) (snapshot.FileRecord, error) {
	for i, ref := range parentFile.Chunks {
		if err := e.chunks.Retain(ref.Digest); err != nil {
			for _, held := range parentFile.Chunks[:i] {
				e.chunks.Release(held.Digest)
			}
			return snapshot.FileRecord{}, err
		}
	}

	record := parentFile
	record.ModifiedTime = entry.ModTime
	e.log.PrintVerbose("unchanged %s (%d chunks reused)", entry.Path, len(parentFile.Chunks))
	return record, nil
}

// storeChangedFile chunks an added or modified file and stores every
// chunk payload.
func (e *Engine) storeChangedFile(entry walker.FileEntry) (snapshot.FileRecord, error) {
	data, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		return snapshot.FileRecord{}, &chunker.ChunkingError{Path: entry.Path, Err: err}
	}

	refs, err := e.chunker.ChunkData(data)
	if err != nil {
		return snapshot.FileRecord{}, err
	}

	for i := range refs {
		ref := &refs[i]
		payload := data[ref.Offset : ref.Offset+ref.Size]
		if err := e.chunks.Put(ref.Digest, payload); err != nil {
			for _, held := range refs[:i] {
				e.chunks.Release(held.Digest)
			}
			return snapshot.FileRecord{}, err
		}
		if stored, err := e.chunks.StoredSize(ref.Digest); err == nil {
			ref.CompressedSize = stored
		}
	}

	e.log.PrintVerbose("stored %s (%d chunks)", entry.Path, len(refs))
	return snapshot.FileRecord{
		Path:         entry.Path,
		Size:         entry.Size,
		Digest:       entry.Digest,
		ModifiedTime: entry.ModTime,
		FileType:     strings.TrimPrefix(filepath.Ext(entry.Path), "."),
		Chunks:       refs,
	}, nil
}

// ListSnapshots loads every manifest in chronological order.
func (e *Engine) ListSnapshots() ([]*snapshot.Manifest, error) {
	ids, err := e.snapshots.List()
	if err != nil {
		return nil, err
	}

	manifests := make([]*snapshot.Manifest, 0, len(ids))
	for _, id := range ids {
		m, err := e.snapshots.Get(id)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// GetSnapshot loads one manifest by id.
func (e *Engine) GetSnapshot(id string) (*snapshot.Manifest, error) {
	return e.snapshots.Get(id)
}

// CompareSnapshots diffs two snapshots by whole-file digest.
func (e *Engine) CompareSnapshots(fromID, toID string) (*snapshot.ChangeSet, error) {
	from, err := e.snapshots.Get(fromID)
	if err != nil {
		return nil, err
	}
	to, err := e.snapshots.Get(toID)
	if err != nil {
		return nil, err
	}

	return &snapshot.ChangeSet{
		From:    fromID,
		To:      toID,
		Changes: snapshot.Diff(from.FileMap(), to.FileMap()),
	}, nil
}

// DeleteSnapshot releases every chunk reference the snapshot holds and
// removes its manifest. Releasing is the only path that decrements
// reference counts, so chunks shared with other snapshots survive.
func (e *Engine) DeleteSnapshot(id string) error {
	m, err := e.snapshots.Get(id)
	if err != nil {
		return err
	}

	for _, digest := range m.ChunkDigests() {
		if err := e.chunks.Release(digest); err != nil {
			e.log.Warnf("releasing chunk %s: %v", digest, err)
		}
	}
	return e.snapshots.Delete(id)
}

// VerifySnapshotIntegrity checks that every chunk the snapshot
// references is still present in the store. Payload bytes are not
// re-read here; they are validated against their digest on every Get.
func (e *Engine) VerifySnapshotIntegrity(id string) (bool, error) {
	m, err := e.snapshots.Get(id)
	if err != nil {
		return false, err
	}

	ok := true
	seen := map[string]bool{}
	for _, digest := range m.ChunkDigests() {
		if seen[digest] {
			continue
		}
		seen[digest] = true

		if !e.chunks.Exists(digest) {
			e.log.Warnf("missing chunk %s", digest)
			ok = false
		}
	}
	return ok, nil
}

// Stats aggregates chunk store statistics.
func (e *Engine) Stats() (store.Stats, error) {
	return e.chunks.Stats()
}

// CollectGarbage removes unreferenced chunks and returns the count.
func (e *Engine) CollectGarbage() (int, error) {
	return e.chunks.CollectGarbage()
}
