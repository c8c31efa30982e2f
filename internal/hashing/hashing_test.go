package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSumDataAlgorithms(t *testing.T) {
	data := []byte("stillsuit hashing test payload")

	tests := []struct {
		algorithm string
		hexLen    int
	}{
		{algorithm: "sha256", hexLen: 64},
		{algorithm: "sha1", hexLen: 40},
		{algorithm: "md5", hexLen: 32},
		{algorithm: "blake3", hexLen: 64},
		{algorithm: "xxhash64", hexLen: 16},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			digest, err := SumData(data, tt.algorithm)
			if err != nil {
				t.Fatalf("SumData failed for %s: %v", tt.algorithm, err)
			}
			if len(digest) != tt.hexLen {
				t.Errorf("%s digest length = %d, want %d", tt.algorithm, len(digest), tt.hexLen)
			}

			// Same input must always produce the same digest.
			again, err := SumData(data, tt.algorithm)
			if err != nil {
				t.Fatalf("second SumData failed: %v", err)
			}
			if digest != again {
				t.Errorf("%s digest not deterministic", tt.algorithm)
			}
		})
	}
}

func TestSumDataUnknownAlgorithm(t *testing.T) {
	if _, err := SumData([]byte("x"), "crc32"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestSumFileMatchesSumData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	data := []byte("file hashing should match in-memory hashing")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	fromFile, err := SumFile(path, "sha256")
	if err != nil {
		t.Fatalf("SumFile failed: %v", err)
	}
	fromData, err := SumData(data, "sha256")
	if err != nil {
		t.Fatalf("SumData failed: %v", err)
	}
	if fromFile != fromData {
		t.Errorf("SumFile = %s, SumData = %s", fromFile, fromData)
	}
}

func TestSumFileMissing(t *testing.T) {
	if _, err := SumFile("/nonexistent/file", "sha256"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVerifyData(t *testing.T) {
	data := []byte("verify me")
	digest, err := SumData(data, "sha256")
	if err != nil {
		t.Fatalf("SumData failed: %v", err)
	}

	if !VerifyData(data, digest, "sha256") {
		t.Error("VerifyData rejected matching digest")
	}
	if VerifyData([]byte("verify mf"), digest, "sha256") {
		t.Error("VerifyData accepted wrong data")
	}
}
