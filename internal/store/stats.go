package store

import (
	"os"
	"path/filepath"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// Stats is an aggregate, read-only view over the stored chunks,
// computed on demand from the side records and reference counts.
type Stats struct {
	TotalSize          int64
	CompressedSize     int64
	UniqueChunks       int
	DeduplicatedChunks int
	CompressionRatio   float64
	DeduplicationRatio float64
}

// Stats scans the chunk metadata and reference table and aggregates
// size, compression and dedup figures.
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	chunksRoot := filepath.Join(s.root, constants.ChunksDirName)

	err := filepath.Walk(chunksRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		digest := filepath.Base(path)
		stats.UniqueChunks++

		if meta, err := s.readMeta(digest); err == nil {
			stats.TotalSize += meta.OriginalSize
			stats.CompressedSize += meta.CompressedSize
		} else {
			stats.TotalSize += info.Size()
			stats.CompressedSize += info.Size()
		}

		if count := s.refCounts[digest]; count > 1 {
			stats.DeduplicatedChunks += count - 1
		}
		return nil
	})
	if err != nil {
		return Stats{}, &StorageError{Op: "stats", Err: err}
	}

	if stats.TotalSize > 0 {
		stats.CompressionRatio = float64(stats.CompressedSize) / float64(stats.TotalSize)
	}
	totalRefs := stats.UniqueChunks + stats.DeduplicatedChunks
	if totalRefs > 0 {
		stats.DeduplicationRatio = float64(stats.DeduplicatedChunks) / float64(totalRefs)
	}

	return stats, nil
}
