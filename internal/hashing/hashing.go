// Package hashing provides the digest algorithms used for content
// addressing, plus the rolling window hash that drives content-defined
// chunk boundary detection.
package hashing

import (
	"crypto/md5" // #nosec G501 - legacy algorithm kept for interop, not security
	"crypto/sha1" // #nosec G505
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// New returns a hasher for the named algorithm. Digests are rendered as
// lowercase hex by SumData/SumFile.
func New(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case constants.HashAlgorithmSHA256, "":
		return sha256.New(), nil
	case constants.HashAlgorithmSHA1:
		return sha1.New(), nil // #nosec G401
	case constants.HashAlgorithmMD5:
		return md5.New(), nil // #nosec G401
	case constants.HashAlgorithmBlake3:
		return blake3.New(), nil
	case constants.HashAlgorithmXXHash64:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

// SumData computes the digest of data using the named algorithm.
func SumData(data []byte, algorithm string) (string, error) {
	hasher, err := New(algorithm)
	if err != nil {
		return "", err
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// SumFile computes the digest of a file's contents without loading the
// whole file into memory.
func SumFile(path string, algorithm string) (string, error) {
	hasher, err := New(algorithm)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyData reports whether data hashes to the expected digest.
func VerifyData(data []byte, expected string, algorithm string) bool {
	actual, err := SumData(data, algorithm)
	if err != nil {
		return false
	}
	return actual == expected
}
