package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

func testCompression() config.CompressionConfig {
	return config.CompressionConfig{
		Algorithm: constants.CompressionTypeZstd,
		Fallback:  constants.CompressionTypeGzip,
		Level:     3,
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), constants.HashAlgorithmSHA256, testCompression())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func mustDigest(t *testing.T, payload []byte) string {
	t.Helper()
	digest, err := hashing.SumData(payload, constants.HashAlgorithmSHA256)
	if err != nil {
		t.Fatalf("SumData failed: %v", err)
	}
	return digest
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("chunk payload round trip "), 100)
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !s.Exists(digest) {
		t.Fatal("Exists = false after Put")
	}

	got, err := s.Get(digest)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("Get returned different bytes than Put stored")
	}
}

func TestPutDigestMismatch(t *testing.T) {
	s := openTestStore(t)
	payload := []byte("payload")
	wrong := mustDigest(t, []byte("different payload"))

	err := s.Put(wrong, payload)
	if err == nil {
		t.Fatal("Put accepted mismatched digest")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("error type = %T, want *StorageError", err)
	}
	if s.Exists(wrong) {
		t.Error("mismatched Put left a payload behind")
	}
}

func TestDedupCorrectness(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("dedup me "), 300)
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	if count := s.RefCount(digest); count != 2 {
		t.Errorf("RefCount = %d after two Puts, want 2", count)
	}

	// Exactly one physical payload on disk.
	chunkFiles := 0
	root := filepath.Join(s.root, constants.ChunksDirName)
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			chunkFiles++
		}
		return nil
	})
	if chunkFiles != 1 {
		t.Errorf("found %d payload files, want 1", chunkFiles)
	}

	// Releasing one reference keeps the payload.
	if err := s.Release(digest); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !s.Exists(digest) {
		t.Fatal("payload deleted while still referenced")
	}
	if count := s.RefCount(digest); count != 1 {
		t.Errorf("RefCount = %d after one Release, want 1", count)
	}

	// Releasing the last reference removes it.
	if err := s.Release(digest); err != nil {
		t.Fatalf("final Release failed: %v", err)
	}
	if s.Exists(digest) {
		t.Fatal("payload still present after final Release")
	}
}

func TestRetain(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("retained chunk "), 100)
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Retain(digest); err != nil {
		t.Fatalf("Retain failed: %v", err)
	}
	if count := s.RefCount(digest); count != 2 {
		t.Errorf("RefCount = %d after Put+Retain, want 2", count)
	}

	if err := s.Retain("deadbeef" + digest[8:]); err == nil {
		t.Error("Retain succeeded for unknown digest")
	}
}

func TestCorruptionDetection(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("integrity matters "), 200)
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Flip one byte in the stored payload.
	chunkPath := s.chunkPath(digest)
	stored, err := os.ReadFile(chunkPath)
	if err != nil {
		t.Fatalf("failed to read stored chunk: %v", err)
	}
	stored[len(stored)/2] ^= 0xFF
	if err := os.WriteFile(chunkPath, stored, 0o644); err != nil {
		t.Fatalf("failed to rewrite chunk: %v", err)
	}

	_, err = s.Get(digest)
	if err == nil {
		t.Fatal("Get returned corrupted bytes without error")
	}
	var corruptErr *CorruptedDataError
	if !errors.As(err, &corruptErr) {
		t.Errorf("error type = %T, want *CorruptedDataError", err)
	}
}

func TestGetMissingChunk(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(mustDigest(t, []byte("never stored")))
	if err == nil {
		t.Fatal("Get succeeded for missing chunk")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("error type = %T, want *StorageError", err)
	}
}

func TestSmallPayloadStoredRaw(t *testing.T) {
	s := openTestStore(t)
	payload := []byte("below the compression threshold")
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	stored, err := os.ReadFile(s.chunkPath(digest))
	if err != nil {
		t.Fatalf("failed to read stored chunk: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Error("small payload was not stored raw")
	}
}

func TestCompressiblePayloadShrinks(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("A"), 64*1024)
	digest := mustDigest(t, payload)

	if err := s.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	info, err := os.Stat(s.chunkPath(digest))
	if err != nil {
		t.Fatalf("failed to stat stored chunk: %v", err)
	}
	if info.Size() >= int64(len(payload)) {
		t.Errorf("stored size %d not smaller than original %d", info.Size(), len(payload))
	}

	got, err := s.Get(digest)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("compressed round trip failed")
	}
}

func TestRefCountsPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte("persistent refs "), 100)

	s1, err := Open(dir, constants.HashAlgorithmSHA256, testCompression())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	digest := mustDigest(t, payload)
	if err := s1.Put(digest, payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s1.Put(digest, payload); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	s2, err := Open(dir, constants.HashAlgorithmSHA256, testCompression())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if count := s2.RefCount(digest); count != 2 {
		t.Errorf("RefCount after reopen = %d, want 2", count)
	}

	got, err := s2.Get(digest)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("Get after reopen failed: %v", err)
	}
}

func TestCollectGarbage(t *testing.T) {
	s := openTestStore(t)

	live := bytes.Repeat([]byte("live chunk "), 120)
	liveDigest := mustDigest(t, live)
	if err := s.Put(liveDigest, live); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Simulate a leaked zero-count entry.
	stale := bytes.Repeat([]byte("stale chunk "), 120)
	staleDigest := mustDigest(t, stale)
	if err := s.Put(staleDigest, stale); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	s.mu.Lock()
	s.refCounts[staleDigest] = 0
	s.mu.Unlock()

	removed, err := s.CollectGarbage()
	if err != nil {
		t.Fatalf("CollectGarbage failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if s.Exists(staleDigest) {
		t.Error("stale chunk survived garbage collection")
	}
	if !s.Exists(liveDigest) {
		t.Error("referenced chunk was garbage collected")
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)

	shared := bytes.Repeat([]byte("shared across files "), 200)
	sharedDigest := mustDigest(t, shared)
	if err := s.Put(sharedDigest, shared); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(sharedDigest, shared); err != nil {
		t.Fatalf("dedup Put failed: %v", err)
	}

	unique := bytes.Repeat([]byte("only stored once "), 150)
	if err := s.Put(mustDigest(t, unique), unique); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.UniqueChunks != 2 {
		t.Errorf("UniqueChunks = %d, want 2", stats.UniqueChunks)
	}
	if stats.DeduplicatedChunks != 1 {
		t.Errorf("DeduplicatedChunks = %d, want 1", stats.DeduplicatedChunks)
	}
	if stats.TotalSize != int64(len(shared)+len(unique)) {
		t.Errorf("TotalSize = %d, want %d", stats.TotalSize, len(shared)+len(unique))
	}
	if stats.CompressedSize <= 0 || stats.CompressedSize >= stats.TotalSize {
		t.Errorf("CompressedSize = %d outside (0,%d)", stats.CompressedSize, stats.TotalSize)
	}
	if stats.CompressionRatio <= 0 || stats.CompressionRatio >= 1 {
		t.Errorf("CompressionRatio = %f outside (0,1)", stats.CompressionRatio)
	}
	if stats.DeduplicationRatio <= 0 {
		t.Errorf("DeduplicationRatio = %f, want > 0", stats.DeduplicationRatio)
	}
}

func TestConcurrentPutRelease(t *testing.T) {
	s := openTestStore(t)
	payload := bytes.Repeat([]byte("contended chunk "), 100)
	digest := mustDigest(t, payload)

	const workers = 8
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			done <- s.Put(digest, payload)
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Put failed: %v", err)
		}
	}

	if count := s.RefCount(digest); count != workers {
		t.Errorf("RefCount = %d after %d concurrent Puts, want %d", count, workers, workers)
	}

	for i := 0; i < workers; i++ {
		go func() {
			done <- s.Release(digest)
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Release failed: %v", err)
		}
	}

	if s.Exists(digest) {
		t.Error("chunk still present after all references released")
	}
}
