// Package compression wraps the chunk payload codecs. Algorithms are
// selected by name from vault configuration; CompressWithFallback
// degrades gracefully so a codec failure never loses data.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// Error reports a codec failure for a named algorithm.
type Error struct {
	Algorithm string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("compression error (%s): %v", e.Algorithm, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compress compresses data with the named algorithm. Level is clamped to
// the algorithm's supported range; "none" returns the input unchanged.
func Compress(data []byte, algorithm string, level int) ([]byte, error) {
	switch algorithm {
	case constants.CompressionTypeNone:
		return data, nil

	case constants.CompressionTypeGzip:
		var buf bytes.Buffer
		writer, err := gzip.NewWriterLevel(&buf, clampLevel(level, gzip.BestSpeed, gzip.BestCompression))
		if err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		if _, err := writer.Write(data); err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		if err := writer.Close(); err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		return buf.Bytes(), nil

	case constants.CompressionTypeZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil

	case constants.CompressionTypeLZ4:
		var buf bytes.Buffer
		writer := lz4.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		if err := writer.Close(); err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		return buf.Bytes(), nil

	default:
		return nil, &Error{Algorithm: algorithm, Err: fmt.Errorf("unsupported algorithm")}
	}
}

// Decompress reverses Compress for the named algorithm. Output is capped
// at MaxDecompressionSize.
func Decompress(data []byte, algorithm string) ([]byte, error) {
	switch algorithm {
	case constants.CompressionTypeNone:
		return data, nil

	case constants.CompressionTypeGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		defer reader.Close()
		return readCapped(reader, algorithm)

	case constants.CompressionTypeZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		defer decoder.Close()
		decompressed, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, &Error{Algorithm: algorithm, Err: err}
		}
		if len(decompressed) > constants.MaxDecompressionSize {
			return nil, &Error{Algorithm: algorithm, Err: fmt.Errorf("decompressed data exceeds %d byte limit", constants.MaxDecompressionSize)}
		}
		return decompressed, nil

	case constants.CompressionTypeLZ4:
		reader := lz4.NewReader(bytes.NewReader(data))
		return readCapped(reader, algorithm)

	default:
		return nil, &Error{Algorithm: algorithm, Err: fmt.Errorf("unsupported algorithm")}
	}
}

// CompressWithFallback tries the preferred algorithm, then the fallback,
// and finally returns the raw bytes as "none". The returned string names
// the algorithm actually applied.
func CompressWithFallback(data []byte, preferred, fallback string, level int) ([]byte, string, error) {
	if compressed, err := Compress(data, preferred, level); err == nil {
		return compressed, preferred, nil
	}
	if compressed, err := Compress(data, fallback, level); err == nil {
		return compressed, fallback, nil
	}
	return data, constants.CompressionTypeNone, nil
}

func readCapped(r io.Reader, algorithm string) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, constants.MaxDecompressionSize)
	if err != nil && err != io.EOF {
		return nil, &Error{Algorithm: algorithm, Err: err}
	}
	if n == constants.MaxDecompressionSize {
		var extra [1]byte
		if _, err := r.Read(extra[:]); err == nil {
			return nil, &Error{Algorithm: algorithm, Err: fmt.Errorf("decompressed data exceeds %d byte limit", constants.MaxDecompressionSize)}
		}
	}
	return buf.Bytes(), nil
}

func clampLevel(level, min, max int) int {
	if level < min {
		return min
	}
	if level > max {
		return max
	}
	return level
}
