package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/hashing"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir for %s failed: %v", rel, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		t.Fatalf("write %s failed: %v", rel, err)
	}
}

func scanPaths(entries []FileEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

func TestScanOrderAndDigests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", []byte("bravo"))
	writeFile(t, root, "a.txt", []byte("alpha"))
	writeFile(t, root, "sub/c.txt", []byte("charlie"))

	entries, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"a.txt", "b.txt", "sub/c.txt"}
	got := scanPaths(entries)
	if len(got) != len(want) {
		t.Fatalf("Scan found %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %s, want %s", i, got[i], want[i])
		}
	}

	wantDigest, err := hashing.SumData([]byte("alpha"), constants.HashAlgorithmSHA256)
	if err != nil {
		t.Fatalf("SumData failed: %v", err)
	}
	if entries[0].Digest != wantDigest {
		t.Errorf("digest = %s, want %s", entries[0].Digest, wantDigest)
	}
	if entries[0].Size != int64(len("alpha")) {
		t.Errorf("size = %d, want %d", entries[0].Size, len("alpha"))
	}
}

func TestScanSkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "visible.txt", []byte("seen"))
	writeFile(t, root, ".hidden.txt", []byte("unseen"))
	writeFile(t, root, ".git/config", []byte("unseen"))

	entries, err := Scan(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := scanPaths(entries); len(got) != 1 || got[0] != "visible.txt" {
		t.Errorf("Scan found %v, want [visible.txt]", got)
	}

	entries, err = Scan(context.Background(), root, Options{IncludeHidden: true})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := scanPaths(entries); len(got) != 3 {
		t.Errorf("Scan with IncludeHidden found %v, want 3 entries", got)
	}
}

func TestScanIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", []byte("keep"))
	writeFile(t, root, "skip.log", []byte("skip"))
	writeFile(t, root, "build/out.bin", []byte("skip"))
	writeFile(t, root, "src/deep.log", []byte("skip"))

	entries, err := Scan(context.Background(), root, Options{
		IgnorePatterns: []string{"*.log", "build"},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := scanPaths(entries); len(got) != 1 || got[0] != "keep.txt" {
		t.Errorf("Scan found %v, want [keep.txt]", got)
	}
}

func TestDigestDropsVanishedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "kept.txt", []byte("still here"))
	writeFile(t, root, "vanished.txt", []byte("about to go"))

	// The entry list the walk phase produces; the file disappears before
	// the digest phase reaches it.
	entries := []FileEntry{
		{Path: "kept.txt", AbsPath: filepath.Join(root, "kept.txt")},
		{Path: "vanished.txt", AbsPath: filepath.Join(root, "vanished.txt")},
	}
	if err := os.Remove(filepath.Join(root, "vanished.txt")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	var warnings []string
	opts := Options{
		Warn: func(format string, args ...interface{}) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	}

	kept, err := digestAll(context.Background(), entries, opts)
	if err != nil {
		t.Fatalf("digestAll failed: %v", err)
	}
	if len(kept) != 1 || kept[0].Path != "kept.txt" {
		t.Fatalf("kept entries = %v, want [kept.txt]", scanPaths(kept))
	}
	if kept[0].Digest == "" {
		t.Error("surviving entry has no digest")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "vanished.txt") {
		t.Errorf("warnings = %v, want one mentioning vanished.txt", warnings)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatal("Scan succeeded for missing root")
	}
}

func TestScanRespectsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("alpha"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, root, Options{}); err == nil {
		t.Fatal("Scan ignored a cancelled context")
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	entries, err := Scan(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Scan of empty dir found %v", scanPaths(entries))
	}
}
