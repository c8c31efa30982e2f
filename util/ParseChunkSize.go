package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChunkSize converts a human-friendly size string ("4KB", "1MB", "512")
// into a byte count. A bare number is treated as bytes.
func ParseChunkSize(chunkSize string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(chunkSize))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	size, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s", chunkSize)
	}
	if size <= 0 {
		return 0, fmt.Errorf("size must be positive, got: %s", chunkSize)
	}

	return size * multiplier, nil
}
