package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

const latestIndexName = "latest.yaml"

// SnapshotError reports a failure loading, saving or deleting a
// snapshot manifest.
type SnapshotError struct {
	ID  string
	Op  string
	Err error
}

func (e *SnapshotError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("snapshot %s failed for %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("snapshot %s failed: %v", e.Op, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// Store persists snapshot manifests as YAML files under
// <root>/snapshots/<id>.yaml and maintains a latest-snapshot index
// (source root → most recent snapshot id) under <root>/indexes/.
type Store struct {
	root string
}

// NewStore creates or opens a manifest store rooted at root.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{
		filepath.Join(root, constants.SnapshotsDirName),
		filepath.Join(root, constants.IndexesDirName),
	} {
		if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
			return nil, &SnapshotError{Op: "open", Err: err}
		}
	}
	return &Store{root: root}, nil
}

// Put persists a manifest and points the latest index at it. Manifests
// are write-once: storing an id that already exists is an error.
func (s *Store) Put(m *Manifest) error {
	if m.ID == "" {
		return &SnapshotError{Op: "put", Err: fmt.Errorf("manifest has no id")}
	}

	path := s.manifestPath(m.ID)
	if _, err := os.Stat(path); err == nil {
		return &SnapshotError{ID: m.ID, Op: "put",
			Err: fmt.Errorf("manifest already exists")}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.StandardFilePerms)
	if err != nil {
		return &SnapshotError{ID: m.ID, Op: "put", Err: err}
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		f.Close()
		os.Remove(path)
		return &SnapshotError{ID: m.ID, Op: "put", Err: err}
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return &SnapshotError{ID: m.ID, Op: "put", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return &SnapshotError{ID: m.ID, Op: "put", Err: err}
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	index[m.SourceRoot] = m.ID
	return s.saveIndex(index)
}

// Get loads the manifest for id. A missing id is a SnapshotError.
func (s *Store) Get(id string) (*Manifest, error) {
	data, err := os.ReadFile(s.manifestPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SnapshotError{ID: id, Op: "get",
				Err: fmt.Errorf("snapshot not found")}
		}
		return nil, &SnapshotError{ID: id, Op: "get", Err: err}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &SnapshotError{ID: id, Op: "get",
			Err: fmt.Errorf("corrupt manifest: %w", err)}
	}
	return &m, nil
}

// List returns all snapshot ids in sorted order. Because ids begin with
// a UTC timestamp, sorted order is chronological order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, constants.SnapshotsDirName))
	if err != nil {
		return nil, &SnapshotError{Op: "list", Err: err}
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the manifest for id and repairs the latest index: if
// the index pointed at the deleted snapshot it is repointed at the most
// recent remaining snapshot of the same source root, or cleared.
func (s *Store) Delete(id string) error {
	m, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := os.Remove(s.manifestPath(id)); err != nil {
		return &SnapshotError{ID: id, Op: "delete", Err: err}
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	if index[m.SourceRoot] != id {
		return nil
	}

	replacement, err := s.latestForRoot(m.SourceRoot)
	if err != nil {
		return err
	}
	if replacement == "" {
		delete(index, m.SourceRoot)
	} else {
		index[m.SourceRoot] = replacement
	}
	return s.saveIndex(index)
}

// LatestID returns the most recent snapshot id recorded for sourceRoot,
// or "" if none exists.
func (s *Store) LatestID(sourceRoot string) (string, error) {
	index, err := s.loadIndex()
	if err != nil {
		return "", err
	}
	return index[sourceRoot], nil
}

// latestForRoot scans the remaining manifests for the newest one with
// the given source root. Ids sort chronologically so the scan is a max.
func (s *Store) latestForRoot(sourceRoot string) (string, error) {
	ids, err := s.List()
	if err != nil {
		return "", err
	}

	latest := ""
	for _, id := range ids {
		m, err := s.Get(id)
		if err != nil {
			return "", err
		}
		if m.SourceRoot == sourceRoot && id > latest {
			latest = id
		}
	}
	return latest, nil
}

func (s *Store) manifestPath(id string) string {
	return filepath.Join(s.root, constants.SnapshotsDirName, id+".yaml")
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, constants.IndexesDirName, latestIndexName)
}

func (s *Store) loadIndex() (map[string]string, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, &SnapshotError{Op: "index", Err: err}
	}

	index := make(map[string]string)
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &SnapshotError{Op: "index",
			Err: fmt.Errorf("corrupt latest index: %w", err)}
	}
	return index, nil
}

func (s *Store) saveIndex(index map[string]string) error {
	data, err := yaml.Marshal(index)
	if err != nil {
		return &SnapshotError{Op: "index", Err: err}
	}

	path := s.indexPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, constants.StandardFilePerms); err != nil {
		return &SnapshotError{Op: "index", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &SnapshotError{Op: "index", Err: err}
	}
	return nil
}
