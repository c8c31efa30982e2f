// Package chunker splits file data into content-addressed chunks. Three
// strategies are available: fixed-size blocks, content-defined boundaries
// driven by a rolling hash, and a format-aware layer that prefers
// container-record boundaries for known binary formats.
//
// Chunking is deterministic: the same bytes under the same configuration
// always produce the same boundary sequence. Dedup across files and
// snapshots depends on this.
package chunker

import (
	"fmt"
	"os"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// ChunkRef describes one chunk of a file: its content digest, size and
// position. Immutable once produced.
type ChunkRef struct {
	Digest         string `yaml:"digest"`
	Size           int64  `yaml:"size"`
	Offset         int64  `yaml:"offset"`
	CompressedSize int64  `yaml:"compressed_size,omitempty"`
}

// ChunkingError reports unreadable or invalid input to a chunker. The
// backup engine skips the affected file rather than aborting a snapshot.
type ChunkingError struct {
	Path string
	Err  error
}

func (e *ChunkingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("chunking failed for %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("chunking failed: %v", e.Err)
}

func (e *ChunkingError) Unwrap() error {
	return e.Err
}

// Chunker splits data or files into an ordered list of chunk refs.
type Chunker interface {
	ChunkData(data []byte) ([]ChunkRef, error)
	ChunkFile(path string) ([]ChunkRef, error)
}

// New creates a chunker for the configured strategy.
func New(cfg config.ChunkingConfig) (Chunker, error) {
	switch cfg.Strategy {
	case constants.ChunkingStrategyFixed:
		return NewFixedSizeChunker(cfg.FixedBlockSize, cfg.HashAlgorithm), nil
	case constants.ChunkingStrategyContent:
		return NewContentDefinedChunker(cfg), nil
	case constants.ChunkingStrategyFormatAware:
		return NewFormatAwareChunker(cfg), nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %s", cfg.Strategy)
	}
}

// readFileForChunking loads a file, mapping failures to ChunkingError.
func readFileForChunking(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ChunkingError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ChunkingError{Path: path, Err: fmt.Errorf("not a regular file")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ChunkingError{Path: path, Err: err}
	}
	return data, nil
}
