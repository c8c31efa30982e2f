package chunker

import (
	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

// ContentDefinedChunker places chunk boundaries where a rolling hash over
// a sliding window matches the boundary mask, so a small edit only
// invalidates the chunks it touches instead of shifting every boundary
// after it.
//
// A boundary is declared at position i when the current chunk has reached
// MinChunkSize and either the rolling sum ANDed with BoundaryMask is zero
// or the chunk has reached MaxChunkSize. A trailing run shorter than
// MinChunkSize is merged into the preceding chunk; an input that is
// smaller than MinChunkSize in total becomes a single chunk.
type ContentDefinedChunker struct {
	cfg config.ChunkingConfig
}

// NewContentDefinedChunker creates a content-defined chunker.
func NewContentDefinedChunker(cfg config.ChunkingConfig) *ContentDefinedChunker {
	return &ContentDefinedChunker{cfg: cfg}
}

// ChunkData splits data at content-defined boundaries. Empty input
// yields an empty list.
func (c *ContentDefinedChunker) ChunkData(data []byte) ([]ChunkRef, error) {
	if len(data) == 0 {
		return []ChunkRef{}, nil
	}

	minSize := c.cfg.MinChunkSize
	if len(data) <= minSize {
		return c.singleChunk(data)
	}

	boundaries := c.findBoundaries(data)

	chunks := make([]ChunkRef, 0, len(boundaries)+1)
	chunkStart := 0
	for _, boundary := range boundaries {
		ref, err := c.makeChunk(data, chunkStart, boundary)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ref)
		chunkStart = boundary
	}

	if chunkStart < len(data) {
		remaining := len(data) - chunkStart
		if remaining < minSize && len(chunks) > 0 {
			// Undersized tail: fold into the preceding chunk.
			last := chunks[len(chunks)-1]
			chunks = chunks[:len(chunks)-1]
			merged, err := c.makeChunk(data, int(last.Offset), len(data))
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, merged)
		} else {
			ref, err := c.makeChunk(data, chunkStart, len(data))
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, ref)
		}
	}

	return chunks, nil
}

// ChunkFile splits a file at content-defined boundaries.
func (c *ContentDefinedChunker) ChunkFile(path string) ([]ChunkRef, error) {
	data, err := readFileForChunking(path)
	if err != nil {
		return nil, err
	}
	return c.ChunkData(data)
}

// findBoundaries returns the ordered boundary offsets (exclusive chunk
// ends) for data. The rolling hash is windowed over WindowSize bytes and
// never reset at a boundary, which keeps boundary decisions purely local
// to the window contents.
func (c *ContentDefinedChunker) findBoundaries(data []byte) []int {
	windowSize := c.cfg.WindowSize
	minSize := c.cfg.MinChunkSize
	maxSize := c.cfg.MaxChunkSize
	mask := c.cfg.BoundaryMask

	var boundaries []int
	roller := hashing.NewRolling(windowSize)

	prefix := windowSize
	if prefix > len(data) {
		prefix = len(data)
	}
	for i := 0; i < prefix; i++ {
		roller.Roll(data[i])
	}

	lastBoundary := 0
	for i := windowSize; i < len(data); i++ {
		sum := roller.Roll(data[i])
		chunkSize := i - lastBoundary

		if chunkSize < minSize {
			continue
		}
		if sum&mask == 0 || chunkSize >= maxSize {
			boundaries = append(boundaries, i+1)
			lastBoundary = i + 1
		}
	}

	return boundaries
}

func (c *ContentDefinedChunker) singleChunk(data []byte) ([]ChunkRef, error) {
	digest, err := hashing.SumData(data, c.cfg.HashAlgorithm)
	if err != nil {
		return nil, &ChunkingError{Err: err}
	}
	return []ChunkRef{{Digest: digest, Size: int64(len(data)), Offset: 0}}, nil
}

func (c *ContentDefinedChunker) makeChunk(data []byte, start, end int) (ChunkRef, error) {
	digest, err := hashing.SumData(data[start:end], c.cfg.HashAlgorithm)
	if err != nil {
		return ChunkRef{}, &ChunkingError{Err: err}
	}
	return ChunkRef{
		Digest: digest,
		Size:   int64(end - start),
		Offset: int64(start),
	}, nil
}
