package chunker

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/stillsuit/internal/config"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// FormatAwareChunker prefers container-record boundaries for formats it
// understands (PNG tagged records, WAV RIFF sections) and falls back to
// content-defined chunking everywhere else. It is purely an optimization
// over the content-defined chunker: chunk identity stays the digest of
// the chunk's own bytes, so dedup and determinism are unaffected.
type FormatAwareChunker struct {
	cfg     config.ChunkingConfig
	rolling *ContentDefinedChunker
}

// NewFormatAwareChunker creates a format-aware chunker.
func NewFormatAwareChunker(cfg config.ChunkingConfig) *FormatAwareChunker {
	return &FormatAwareChunker{
		cfg:     cfg,
		rolling: NewContentDefinedChunker(cfg),
	}
}

// ChunkFile dispatches on file extension; unknown formats use
// content-defined chunking.
func (c *FormatAwareChunker) ChunkFile(path string) ([]ChunkRef, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		data, err := readFileForChunking(path)
		if err != nil {
			return nil, err
		}
		return c.chunkPNG(data)
	case ".wav":
		data, err := readFileForChunking(path)
		if err != nil {
			return nil, err
		}
		return c.chunkWAV(data)
	default:
		return c.rolling.ChunkFile(path)
	}
}

// ChunkData has no filename to dispatch on, so it sniffs the payload for
// known container signatures before falling back.
func (c *FormatAwareChunker) ChunkData(data []byte) ([]ChunkRef, error) {
	if len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return c.chunkPNG(data)
	}
	if isWAV(data) {
		return c.chunkWAV(data)
	}
	return c.rolling.ChunkData(data)
}

// chunkPNG walks the length-prefixed record stream and starts a new chunk
// at each IDAT record, provided the accumulated chunk already meets the
// minimum size. Malformed input falls back to content-defined chunking.
func (c *FormatAwareChunker) chunkPNG(data []byte) ([]ChunkRef, error) {
	if len(data) < len(pngSignature)+8 || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return c.rolling.ChunkData(data)
	}

	var chunks []ChunkRef
	chunkStart := 0
	i := len(pngSignature)

	for i+8 <= len(data) {
		recordLen := int(binary.BigEndian.Uint32(data[i : i+4]))
		recordType := data[i+4 : i+8]

		if bytes.Equal(recordType, []byte("IDAT")) && i-chunkStart >= c.cfg.MinChunkSize {
			ref, err := c.rolling.makeChunk(data, chunkStart, i)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, ref)
			chunkStart = i
		}

		// length + type + payload + CRC
		advance := 4 + 4 + recordLen + 4
		if advance <= 0 || i+advance < i {
			return c.rolling.ChunkData(data)
		}
		i += advance
	}

	if chunkStart < len(data) {
		ref, err := c.rolling.makeChunk(data, chunkStart, len(data))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ref)
	}

	if len(chunks) == 0 {
		return c.rolling.ChunkData(data)
	}
	return chunks, nil
}

// chunkWAV splits at the RIFF `data` section boundary when the header
// region is large enough to stand as its own chunk.
func (c *FormatAwareChunker) chunkWAV(data []byte) ([]ChunkRef, error) {
	if !isWAV(data) {
		return c.rolling.ChunkData(data)
	}

	i := 12
	for i+8 <= len(data) {
		sectionID := data[i : i+4]
		sectionLen := int(binary.LittleEndian.Uint32(data[i+4 : i+8]))

		if bytes.Equal(sectionID, []byte("data")) {
			if i >= c.cfg.MinChunkSize {
				header, err := c.rolling.makeChunk(data, 0, i)
				if err != nil {
					return nil, err
				}
				payload, err := c.rolling.makeChunk(data, i, len(data))
				if err != nil {
					return nil, err
				}
				return []ChunkRef{header, payload}, nil
			}
			break
		}

		advance := 8 + sectionLen
		if advance <= 0 || i+advance < i {
			break
		}
		i += advance
	}

	return c.rolling.ChunkData(data)
}

func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}
