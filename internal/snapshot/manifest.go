// Package snapshot defines the backup manifest model and the metadata
// store that persists manifests as YAML, plus the diffing used to detect
// changes between snapshots.
package snapshot

import (
	"time"

	"github.com/substantialcattle5/stillsuit/internal/chunker"
)

// Change kinds recorded in a manifest and reported by Diff.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeDeleted  = "deleted"
)

// FileRecord describes one file captured in a snapshot. Paths are
// relative to the snapshot's source root and use forward slashes.
type FileRecord struct {
	Path         string             `yaml:"path"`
	Size         int64              `yaml:"size"`
	Digest       string             `yaml:"digest"`
	ModifiedTime time.Time          `yaml:"modified_time"`
	FileType     string             `yaml:"file_type,omitempty"`
	Chunks       []chunker.ChunkRef `yaml:"chunks"`
	Metadata     map[string]string  `yaml:"metadata,omitempty"`
}

// ChunkDigests returns the file's chunk digests in stored order.
func (f *FileRecord) ChunkDigests() []string {
	digests := make([]string, len(f.Chunks))
	for i, c := range f.Chunks {
		digests[i] = c.Digest
	}
	return digests
}

// ChangeRecord describes how one path differs between two snapshots.
// OldFile is nil for added paths, NewFile is nil for deleted paths.
type ChangeRecord struct {
	Path    string      `yaml:"path"`
	Kind    string      `yaml:"kind"`
	OldFile *FileRecord `yaml:"old_file,omitempty"`
	NewFile *FileRecord `yaml:"new_file,omitempty"`
}

// Manifest is the complete record of one snapshot. Once persisted a
// manifest is never mutated; incremental state lives in the parent chain.
type Manifest struct {
	ID         string            `yaml:"id"`
	Timestamp  time.Time         `yaml:"timestamp"`
	SourceRoot string            `yaml:"source_root"`
	ParentID   string            `yaml:"parent_id,omitempty"`
	Files      []FileRecord      `yaml:"files"`
	Changes    []ChangeRecord    `yaml:"changes,omitempty"`
	Tags       []string          `yaml:"tags,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// FileMap indexes the manifest's files by relative path.
func (m *Manifest) FileMap() map[string]FileRecord {
	files := make(map[string]FileRecord, len(m.Files))
	for _, f := range m.Files {
		files[f.Path] = f
	}
	return files
}

// TotalSize returns the sum of the original sizes of all files.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

// ChunkDigests returns every chunk digest referenced by the manifest,
// one entry per (file, position) reference. Duplicates are intentional:
// each entry corresponds to one reference count held by this snapshot.
func (m *Manifest) ChunkDigests() []string {
	var digests []string
	for _, f := range m.Files {
		digests = append(digests, f.ChunkDigests()...)
	}
	return digests
}

// ChangeSummary counts changes by kind.
type ChangeSummary struct {
	Added    int
	Modified int
	Deleted  int
}

// ChangeSet is the result of comparing two snapshots.
type ChangeSet struct {
	From    string
	To      string
	Changes []ChangeRecord
}

// Summary tallies the change set by kind.
func (cs *ChangeSet) Summary() ChangeSummary {
	var s ChangeSummary
	for _, c := range cs.Changes {
		switch c.Kind {
		case ChangeAdded:
			s.Added++
		case ChangeModified:
			s.Modified++
		case ChangeDeleted:
			s.Deleted++
		}
	}
	return s
}
