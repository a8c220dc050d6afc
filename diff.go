package xmlpo

import "github.com/ZaguanLabs/xmlpo/catalog"

// DiffResult represents the difference between two catalogs extracted
// from successive versions of the same documents.
type DiffResult struct {
	// Added contains messages only present in the new catalog.
	Added []*catalog.Message

	// Removed contains messages only present in the old catalog.
	Removed []*catalog.Message

	// Unchanged contains messages present in both, taken from the new catalog.
	Unchanged []*catalog.Message

	// Modified pairs a removed and an added message that start at the same
	// source location, the usual sign of an edited paragraph.
	Modified []ModifiedMessage
}

// ModifiedMessage is an edited message.
type ModifiedMessage struct {
	Old *catalog.Message
	New *catalog.Message
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the new and edited messages.
func (d *DiffResult) NeedsTranslation() []*catalog.Message {
	result := make([]*catalog.Message, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffCatalogs compares two catalogs by message key. Results keep catalog
// order. Removed and added messages whose first location has the same file
// and tag and line are reported as modified instead.
func DiffCatalogs(oldCat, newCat *catalog.Catalog) *DiffResult {
	result := &DiffResult{}

	oldKeys := make(map[string]bool)
	for _, m := range oldCat.Messages() {
		oldKeys[m.Key()] = true
	}
	newKeys := make(map[string]bool)
	for _, m := range newCat.Messages() {
		newKeys[m.Key()] = true
	}

	var removed []*catalog.Message
	for _, m := range oldCat.Messages() {
		if !newKeys[m.Key()] {
			removed = append(removed, m)
		}
	}

	var added []*catalog.Message
	for _, m := range newCat.Messages() {
		if oldKeys[m.Key()] {
			result.Unchanged = append(result.Unchanged, m)
		} else {
			added = append(added, m)
		}
	}

	byLocation := make(map[catalog.Location]int)
	for i, m := range removed {
		if len(m.Locations) == 0 {
			continue
		}
		if _, taken := byLocation[m.Locations[0]]; !taken {
			byLocation[m.Locations[0]] = i
		}
	}

	matched := make(map[int]bool)
	for _, m := range added {
		if len(m.Locations) > 0 {
			if i, ok := byLocation[m.Locations[0]]; ok && !matched[i] {
				matched[i] = true
				result.Modified = append(result.Modified, ModifiedMessage{Old: removed[i], New: m})
				continue
			}
		}
		result.Added = append(result.Added, m)
	}
	for i, m := range removed {
		if !matched[i] {
			result.Removed = append(result.Removed, m)
		}
	}

	return result
}
