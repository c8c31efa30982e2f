package chunker

import (
	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

// FixedSizeChunker splits input into blocks of exactly blockSize bytes;
// only the final block may be shorter. Simple and fast, but a single
// inserted byte shifts every subsequent boundary, so dedup across edits
// is poor. Useful for small well-understood objects and test fixtures.
type FixedSizeChunker struct {
	blockSize     int
	hashAlgorithm string
}

// NewFixedSizeChunker creates a fixed-size chunker.
func NewFixedSizeChunker(blockSize int, hashAlgorithm string) *FixedSizeChunker {
	if blockSize <= 0 {
		blockSize = constants.DefaultFixedBlockSize
	}
	return &FixedSizeChunker{blockSize: blockSize, hashAlgorithm: hashAlgorithm}
}

// ChunkData splits data into fixed-size blocks.
func (c *FixedSizeChunker) ChunkData(data []byte) ([]ChunkRef, error) {
	if len(data) == 0 {
		return []ChunkRef{}, nil
	}

	chunks := make([]ChunkRef, 0, len(data)/c.blockSize+1)
	for offset := 0; offset < len(data); offset += c.blockSize {
		end := offset + c.blockSize
		if end > len(data) {
			end = len(data)
		}

		digest, err := hashing.SumData(data[offset:end], c.hashAlgorithm)
		if err != nil {
			return nil, &ChunkingError{Err: err}
		}

		chunks = append(chunks, ChunkRef{
			Digest: digest,
			Size:   int64(end - offset),
			Offset: int64(offset),
		})
	}

	return chunks, nil
}

// ChunkFile splits a file into fixed-size blocks.
func (c *FixedSizeChunker) ChunkFile(path string) ([]ChunkRef, error) {
	data, err := readFileForChunking(path)
	if err != nil {
		return nil, err
	}
	return c.ChunkData(data)
}
