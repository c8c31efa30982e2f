package snapshot

import "sort"

// Diff compares two path-keyed file maps and reports per-path changes.
// A file is modified when its whole-file digest differs; metadata-only
// differences are not changes. Results are sorted by path so diffing is
// deterministic.
func Diff(oldFiles, newFiles map[string]FileRecord) []ChangeRecord {
	changes := []ChangeRecord{}

	for path, newFile := range newFiles {
		oldFile, existed := oldFiles[path]
		if !existed {
			f := newFile
			changes = append(changes, ChangeRecord{
				Path:    path,
				Kind:    ChangeAdded,
				NewFile: &f,
			})
			continue
		}
		if oldFile.Digest != newFile.Digest {
			of, nf := oldFile, newFile
			changes = append(changes, ChangeRecord{
				Path:    path,
				Kind:    ChangeModified,
				OldFile: &of,
				NewFile: &nf,
			})
		}
	}

	for path, oldFile := range oldFiles {
		if _, exists := newFiles[path]; !exists {
			f := oldFile
			changes = append(changes, ChangeRecord{
				Path:    path,
				Kind:    ChangeDeleted,
				OldFile: &f,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes
}
