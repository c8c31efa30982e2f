// Package store implements the content-addressed chunk store: write-once
// payloads keyed by digest, sharded on disk, compressed when worthwhile,
// and reference-counted so a chunk is only physically deleted once no
// snapshot references it.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/substantialcattle5/stillsuit/internal/compression"
	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

// chunkMeta is the side record persisted next to each payload.
type chunkMeta struct {
	OriginalSize   int64  `json:"original_size"`
	CompressedSize int64  `json:"compressed_size"`
	Algorithm      string `json:"algorithm"`
	StoredAt       string `json:"stored_at"`
}

// Store is a content-addressed chunk store rooted at a directory.
// Payload writes are write-once and idempotent; the reference-count
// table is the only hot shared state and is guarded by a mutex.
type Store struct {
	root          string
	hashAlgorithm string
	comp          config.CompressionConfig

	mu        sync.Mutex
	refCounts map[string]int
}

// Open creates or opens a chunk store at root, loading any persisted
// reference counts.
func Open(root string, hashAlgorithm string, comp config.CompressionConfig) (*Store, error) {
	s := &Store{
		root:          root,
		hashAlgorithm: hashAlgorithm,
		comp:          comp,
		refCounts:     make(map[string]int),
	}

	for _, dir := range []string{
		filepath.Join(root, constants.ChunksDirName),
		filepath.Join(root, constants.ChunkMetaDirName),
		filepath.Join(root, constants.RefsDirName),
	} {
		if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	if err := s.loadRefCounts(); err != nil {
		return nil, err
	}

	return s, nil
}

// Put stores payload under digest. The digest must equal the hash of the
// payload; a mismatch is a caller bug and fails hard. If the chunk is
// already present only its reference count is incremented; the payload
// on disk is never overwritten.
func (s *Store) Put(digest string, payload []byte) error {
	actual, err := hashing.SumData(payload, s.hashAlgorithm)
	if err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}
	if actual != digest {
		return &StorageError{Op: "put", Digest: digest,
			Err: fmt.Errorf("digest mismatch: payload hashes to %s", actual)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chunkPath := s.chunkPath(digest)
	if _, err := os.Stat(chunkPath); err == nil {
		s.refCounts[digest]++
		if err := s.saveRefCountsLocked(); err != nil {
			s.refCounts[digest]--
			return err
		}
		return nil
	}

	stored := payload
	algorithm := constants.CompressionTypeNone
	if s.comp.Algorithm != constants.CompressionTypeNone && len(payload) > constants.CompressionThreshold {
		compressed, used, err := compression.CompressWithFallback(payload, s.comp.Algorithm, s.comp.Fallback, s.comp.Level)
		if err == nil && len(compressed) < len(payload) {
			stored = compressed
			algorithm = used
		}
	}

	if err := os.MkdirAll(filepath.Dir(chunkPath), constants.StandardDirPerms); err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}
	if err := os.WriteFile(chunkPath, stored, constants.StandardFilePerms); err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}

	meta := chunkMeta{
		OriginalSize:   int64(len(payload)),
		CompressedSize: int64(len(stored)),
		Algorithm:      algorithm,
		StoredAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.writeMeta(digest, meta); err != nil {
		os.Remove(chunkPath)
		return err
	}

	s.refCounts[digest] = 1
	if err := s.saveRefCountsLocked(); err != nil {
		// Must not partially apply: roll back the payload so a failed
		// put leaves no trace.
		delete(s.refCounts, digest)
		os.Remove(chunkPath)
		os.Remove(s.metaPath(digest))
		return err
	}

	return nil
}

// Retain increments the reference count of an already-stored chunk.
// Used when a new snapshot reuses chunks without re-reading file data.
func (s *Store) Retain(digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.chunkPath(digest)); err != nil {
		return &StorageError{Op: "retain", Digest: digest,
			Err: fmt.Errorf("chunk not found")}
	}

	s.refCounts[digest]++
	if err := s.saveRefCountsLocked(); err != nil {
		s.refCounts[digest]--
		return err
	}
	return nil
}

// Get loads the chunk payload for digest, decompressing as needed. The
// result is re-hashed; any size or digest mismatch surfaces as a
// CorruptedDataError rather than returning wrong bytes.
func (s *Store) Get(digest string) ([]byte, error) {
	chunkPath := s.chunkPath(digest)
	stored, err := os.ReadFile(chunkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StorageError{Op: "get", Digest: digest,
				Err: fmt.Errorf("chunk not found")}
		}
		return nil, &StorageError{Op: "get", Digest: digest, Err: err}
	}

	meta, err := s.readMeta(digest)
	if err != nil {
		// Missing side record: treat the payload as raw.
		meta = chunkMeta{
			OriginalSize: int64(len(stored)),
			Algorithm:    constants.CompressionTypeNone,
		}
	}

	data, err := compression.Decompress(stored, meta.Algorithm)
	if err != nil {
		return nil, &CorruptedDataError{Digest: digest,
			Reason: fmt.Sprintf("decompression failed: %v", err)}
	}

	if int64(len(data)) != meta.OriginalSize {
		return nil, &CorruptedDataError{Digest: digest,
			Reason: fmt.Sprintf("size mismatch: got %d, recorded %d", len(data), meta.OriginalSize)}
	}

	actual, err := hashing.SumData(data, s.hashAlgorithm)
	if err != nil {
		return nil, &StorageError{Op: "get", Digest: digest, Err: err}
	}
	if actual != digest {
		return nil, &CorruptedDataError{Digest: digest,
			Reason: fmt.Sprintf("digest mismatch: payload hashes to %s", actual)}
	}

	return data, nil
}

// StoredSize returns the on-disk (possibly compressed) payload size.
func (s *Store) StoredSize(digest string) (int64, error) {
	info, err := os.Stat(s.chunkPath(digest))
	if err != nil {
		return 0, &StorageError{Op: "stat", Digest: digest, Err: err}
	}
	return info.Size(), nil
}

// Exists reports whether a chunk payload is present on disk.
func (s *Store) Exists(digest string) bool {
	_, err := os.Stat(s.chunkPath(digest))
	return err == nil
}

// RefCount returns the current reference count for digest.
func (s *Store) RefCount(digest string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refCounts[digest]
}

// Release decrements the reference count for digest and physically
// deletes the payload and side record once the count reaches zero.
func (s *Store) Release(digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.refCounts[digest]
	if !ok {
		return &StorageError{Op: "release", Digest: digest,
			Err: fmt.Errorf("chunk not tracked")}
	}

	if count <= 1 {
		if err := s.removeChunkLocked(digest); err != nil {
			return err
		}
		delete(s.refCounts, digest)
	} else {
		s.refCounts[digest] = count - 1
	}

	if err := s.saveRefCountsLocked(); err != nil {
		s.refCounts[digest] = count
		return err
	}
	return nil
}

// CollectGarbage removes every chunk whose reference count has dropped
// to zero or below and returns the number removed.
func (s *Store) CollectGarbage() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string
	for digest, count := range s.refCounts {
		if count <= 0 {
			stale = append(stale, digest)
		}
	}

	removed := 0
	for _, digest := range stale {
		if err := s.removeChunkLocked(digest); err != nil {
			return removed, err
		}
		delete(s.refCounts, digest)
		removed++
	}

	if removed > 0 {
		if err := s.saveRefCountsLocked(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (s *Store) chunkPath(digest string) string {
	return filepath.Join(s.root, constants.ChunksDirName, shard(digest), digest)
}

func (s *Store) metaPath(digest string) string {
	return filepath.Join(s.root, constants.ChunkMetaDirName, shard(digest), digest+".json")
}

// shard spreads chunks over a two-level directory tree keyed by the
// first 4 hex characters of the digest to bound directory fan-out.
func shard(digest string) string {
	if len(digest) < 4 {
		return filepath.Join("00", "00")
	}
	return filepath.Join(digest[0:2], digest[2:4])
}

func (s *Store) writeMeta(digest string, meta chunkMeta) error {
	path := s.metaPath(digest)
	if err := os.MkdirAll(filepath.Dir(path), constants.StandardDirPerms); err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}
	if err := os.WriteFile(path, data, constants.StandardFilePerms); err != nil {
		return &StorageError{Op: "put", Digest: digest, Err: err}
	}
	return nil
}

func (s *Store) readMeta(digest string) (chunkMeta, error) {
	data, err := os.ReadFile(s.metaPath(digest))
	if err != nil {
		return chunkMeta{}, err
	}
	var meta chunkMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return chunkMeta{}, err
	}
	return meta, nil
}

func (s *Store) removeChunkLocked(digest string) error {
	if err := os.Remove(s.chunkPath(digest)); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "delete", Digest: digest, Err: err}
	}
	if err := os.Remove(s.metaPath(digest)); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "delete", Digest: digest, Err: err}
	}
	return nil
}

func (s *Store) refCountsPath() string {
	return filepath.Join(s.root, constants.RefsDirName, "ref_counts.json")
}

func (s *Store) loadRefCounts() error {
	data, err := os.ReadFile(s.refCountsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "open", Err: err}
	}
	if err := json.Unmarshal(data, &s.refCounts); err != nil {
		return &StorageError{Op: "open", Err: fmt.Errorf("corrupt reference table: %w", err)}
	}
	return nil
}

// saveRefCountsLocked persists the reference table atomically via a
// temp-file rename. Callers hold s.mu.
func (s *Store) saveRefCountsLocked() error {
	data, err := json.Marshal(s.refCounts)
	if err != nil {
		return &StorageError{Op: "refs", Err: err}
	}

	path := s.refCountsPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, constants.StandardFilePerms); err != nil {
		return &StorageError{Op: "refs", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &StorageError{Op: "refs", Err: err}
	}
	return nil
}
