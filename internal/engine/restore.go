package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
)

// RestoreError reports a failure restoring one file. Other files in the
// same restore continue; the caller receives the joined failures.
type RestoreError struct {
	SnapshotID string
	Path       string
	Err        error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore of %s from snapshot %s failed: %v", e.Path, e.SnapshotID, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

// RestoreSnapshot writes the snapshot's files under targetRoot,
// reassembling each file from its chunks in order and preserving
// modification times. If selectivePaths is non-empty only matching
// files (exact path or directory prefix) are restored. A failed file
// does not abort the rest; all failures are joined into the returned
// error.
func (e *Engine) RestoreSnapshot(ctx context.Context, id, targetRoot string, selectivePaths []string) error {
	m, err := e.snapshots.Get(id)
	if err != nil {
		return err
	}

	absTarget, err := filepath.Abs(targetRoot)
	if err != nil {
		return &RestoreError{SnapshotID: id, Err: err}
	}
	if err := os.MkdirAll(absTarget, constants.StandardDirPerms); err != nil {
		return &RestoreError{SnapshotID: id, Err: err}
	}

	var failures []error
	restored := 0
	for _, file := range m.Files {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if !selected(file.Path, selectivePaths) {
			continue
		}

		if err := e.restoreFile(file, absTarget); err != nil {
			e.log.Warnf("restore %s: %v", file.Path, err)
			failures = append(failures, &RestoreError{SnapshotID: id, Path: file.Path, Err: err})
			continue
		}
		restored++
		e.log.Add(file.Size)
		e.log.PrintVerbose("restored %s", file.Path)
	}

	if restored == 0 && len(selectivePaths) > 0 && len(failures) == 0 {
		return &RestoreError{SnapshotID: id,
			Err: fmt.Errorf("no files match %v", selectivePaths)}
	}
	return errors.Join(failures...)
}

// restoreFile reassembles one file from its chunks. A partial file is
// removed on failure so the target never holds truncated content.
func (e *Engine) restoreFile(file snapshot.FileRecord, targetRoot string) error {
	targetPath := filepath.Join(targetRoot, filepath.FromSlash(file.Path))
	if err := os.MkdirAll(filepath.Dir(targetPath), constants.StandardDirPerms); err != nil {
		return err
	}

	f, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.StandardFilePerms)
	if err != nil {
		return err
	}

	for _, ref := range file.Chunks {
		payload, err := e.chunks.Get(ref.Digest)
		if err != nil {
			f.Close()
			os.Remove(targetPath)
			return err
		}
		if _, err := f.Write(payload); err != nil {
			f.Close()
			os.Remove(targetPath)
			return err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(targetPath)
		return err
	}

	if !file.ModifiedTime.IsZero() {
		if err := os.Chtimes(targetPath, file.ModifiedTime, file.ModifiedTime); err != nil {
			return err
		}
	}
	return nil
}

func selected(path string, selectivePaths []string) bool {
	if len(selectivePaths) == 0 {
		return true
	}
	for _, sel := range selectivePaths {
		sel = strings.TrimSuffix(filepath.ToSlash(sel), "/")
		if path == sel || strings.HasPrefix(path, sel+"/") {
			return true
		}
	}
	return false
}
