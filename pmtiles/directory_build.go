package pmtiles

// maxRootSize is the approximate serialized-byte budget the root directory is
// allowed before entries must be pushed down into leaf directories instead.
// Kept well under typical HTTP range-request sizes so that a cold read of an
// archive's root fetches a small, predictable number of bytes.
const maxRootSize = 16384

// leafDirectory is one second-level directory produced by splitDirectory: a
// contiguous run of entries addressed from the root by a single placeholder
// entry (RunLength 0) pointing at its serialized byte range once written.
type leafDirectory struct {
	firstTileID uint64
	entries     []Entry
}

// splitDirectory decides whether entries fit entirely in the root directory,
// or must be partitioned into a root of leaf-pointers plus a sequence of leaf
// directories. estimateDirectorySize estimates the serialized size of a directory slice
// using the same per-entry worst-case varint cost, avoiding a chicken/egg
// dependency on already having compressed bytes.
//
// This mirrors the two-tier (root + leaves) layout fixed by the format: no
// more than one level of leaf directories is ever produced here, since a
// single level comfortably bounds per-archive overhead even for planet-scale
// tile counts.
func splitDirectory(entries []Entry, c Compression) (root []Entry, leaves []leafDirectory) {
	if estimateDirectorySize(entries) <= maxRootSize {
		return entries, nil
	}

	targetLeafEntries := leafEntryBudget(len(entries))
	root = make([]Entry, 0, len(entries)/targetLeafEntries+1)
	for start := 0; start < len(entries); start += targetLeafEntries {
		end := start + targetLeafEntries
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]
		leaves = append(leaves, leafDirectory{firstTileID: chunk[0].TileID, entries: chunk})
		root = append(root, Entry{TileID: chunk[0].TileID, RunLength: 0})
	}
	return root, leaves
}

// leafEntryBudget picks a number of entries per leaf directory so that the
// root (one pointer entry per leaf) comfortably stays under maxRootSize, by
// approximating each root pointer entry at 16 bytes across its four varint
// fields.
func leafEntryBudget(totalEntries int) int {
	const rootEntryCost = 16 // delta id + run length(0) + length(0) + offset
	maxLeaves := maxRootSize / rootEntryCost
	if maxLeaves < 1 {
		maxLeaves = 1
	}
	budget := (totalEntries + maxLeaves - 1) / maxLeaves
	if budget < 1 {
		budget = 1
	}
	return budget
}

// estimateDirectorySize approximates the serialized size of entries without
// actually running varint encoding, using a conservative per-field byte
// count.
func estimateDirectorySize(entries []Entry) int {
	const perEntry = 24 // 4 varint fields, average well under 6 bytes each
	return 8 + len(entries)*perEntry
}
