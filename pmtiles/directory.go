package pmtiles

import "sort"

// Entry is one row of a directory: the tile ID it (or the first tile of its
// run) addresses, the byte range of its data, and RunLength consecutive
// identical tiles sharing that same offset/length. A RunLength of 0 marks a
// leaf-directory pointer, whose byte range locates a leaf directory instead.
type Entry struct {
	TileID    uint64
	Offset    uint64
	Length    uint32
	RunLength uint32
}

// SerializeEntries encodes a directory's entries using the delta+RLE varint
// layout: entry count, then one pass per field (tile ID deltas, run lengths,
// lengths, offsets-or-zero-for-contiguous), followed by compression with c.
func SerializeEntries(entries []Entry, c Compression) ([]byte, error) {
	var buf []byte
	buf = appendUvarint(buf, uint64(len(entries)))

	var lastID uint64
	for _, e := range entries {
		buf = appendUvarint(buf, e.TileID-lastID)
		lastID = e.TileID
	}
	for _, e := range entries {
		buf = appendUvarint(buf, uint64(e.RunLength))
	}
	for _, e := range entries {
		buf = appendUvarint(buf, uint64(e.Length))
	}
	for i, e := range entries {
		if i > 0 && e.Offset == entries[i-1].Offset+uint64(entries[i-1].Length) {
			buf = appendUvarint(buf, 0)
		} else {
			buf = appendUvarint(buf, e.Offset+1)
		}
	}

	return Compress(c, buf)
}

// DeserializeEntries reverses SerializeEntries, decompressing data with c
// first. Fails with ErrDirectoryTruncated if any stream runs short or if the
// decoded tile IDs are not strictly ascending (a zero delta past the first
// entry).
func DeserializeEntries(data []byte, c Compression) ([]Entry, error) {
	raw, err := Decompress(c, data)
	if err != nil {
		return nil, err
	}
	r := &byteSliceReader{buf: raw}

	count, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, count)

	var lastID uint64
	for i := uint64(0); i < count; i++ {
		delta, err := readUvarint(r)
		if err != nil {
			return nil, ErrDirectoryTruncated
		}
		if i > 0 && delta == 0 {
			return nil, ErrDirectoryTruncated
		}
		lastID += delta
		entries[i].TileID = lastID
	}
	for i := uint64(0); i < count; i++ {
		v, err := readUvarint(r)
		if err != nil {
			return nil, ErrDirectoryTruncated
		}
		entries[i].RunLength = uint32(v)
	}
	for i := uint64(0); i < count; i++ {
		v, err := readUvarint(r)
		if err != nil {
			return nil, ErrDirectoryTruncated
		}
		entries[i].Length = uint32(v)
	}
	for i := uint64(0); i < count; i++ {
		v, err := readUvarint(r)
		if err != nil {
			return nil, ErrDirectoryTruncated
		}
		if v == 0 {
			if i == 0 {
				entries[i].Offset = 0
			} else {
				entries[i].Offset = entries[i-1].Offset + uint64(entries[i-1].Length)
			}
		} else {
			entries[i].Offset = v - 1
		}
	}

	return entries, nil
}

// FindTile performs a binary search for tileID within a directory's entries,
// accounting for run-length coalescing (an entry covers
// [TileID, TileID+RunLength)). It reports the matching entry and whether one
// was found; a RunLength of 0 marks a leaf-directory pointer rather than a
// tile, which the caller distinguishes by descending into it instead of
// returning tile bytes.
func FindTile(entries []Entry, tileID uint64) (Entry, bool) {
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].TileID > tileID
	})
	if i == 0 {
		return Entry{}, false
	}
	e := entries[i-1]
	if e.RunLength == 0 {
		// Leaf directory pointer: covers every tile ID >= e.TileID that no
		// earlier entry claimed, so it always matches here.
		return e, true
	}
	if tileID-e.TileID < uint64(e.RunLength) {
		return e, true
	}
	return Entry{}, false
}
