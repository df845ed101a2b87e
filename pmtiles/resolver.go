package pmtiles

import (
	"bytes"
	"math"

	"github.com/cespare/xxhash/v2"
)

// dedupRecord is the prior occurrence of one distinct tile payload: its
// location in the tile data stream plus a retained copy of its bytes, so a
// hash match can be confirmed with a true byte comparison before treating it
// as a duplicate rather than trusting the 64-bit hash alone.
type dedupRecord struct {
	offset uint64
	data   []byte
}

// resolver accumulates directory entries for a Writer, deduplicating
// identical tile payloads by content hash (collisions resolved by byte
// equality) and coalescing consecutive tiles that resolve to the same
// stored bytes into a single run-length entry, capped at math.MaxUint32
// (RunLength's on-disk width) before a fresh Entry is started. This mirrors
// the Resolver type in the reference conversion tool, swapped from an
// fnv128a content hash to xxhash/v2 per this package's dependency set.
type resolver struct {
	entries        []Entry
	offset         uint64
	byHash         map[uint64][]dedupRecord
	addressedTiles uint64
}

func newResolver() *resolver {
	return &resolver{byHash: make(map[uint64][]dedupRecord)}
}

// addTile records one tile at tileID with the given (already compressed)
// data. It returns the bytes that must actually be written to the tile data
// stream (nil if this content was already seen and only a directory entry
// was appended for it) and whether this tile's bytes are new.
func (r *resolver) addTile(tileID uint64, data []byte) (toWrite []byte, isNew bool) {
	r.addressedTiles++
	sum := xxhash.Sum64(data)
	match := r.findMatch(sum, data)

	if n := len(r.entries); n > 0 && match != nil {
		last := &r.entries[n-1]
		if match.offset == last.Offset && last.TileID+uint64(last.RunLength) == tileID &&
			uint64(last.Length) == uint64(len(data)) && last.RunLength < math.MaxUint32 {
			last.RunLength++
			return nil, false
		}
	}

	if match != nil {
		r.entries = append(r.entries, Entry{
			TileID:    tileID,
			Offset:    match.offset,
			Length:    uint32(len(match.data)),
			RunLength: 1,
		})
		return nil, false
	}

	entry := Entry{TileID: tileID, Offset: r.offset, Length: uint32(len(data)), RunLength: 1}
	r.entries = append(r.entries, entry)
	stored := append([]byte(nil), data...)
	r.byHash[sum] = append(r.byHash[sum], dedupRecord{offset: entry.Offset, data: stored})
	r.offset += uint64(len(data))
	return data, true
}

// findMatch looks up a prior occurrence of data by content hash, confirming
// each candidate with a byte-for-byte comparison so a 64-bit hash collision
// between genuinely different payloads can never cause incorrect
// deduplication.
func (r *resolver) findMatch(sum uint64, data []byte) *dedupRecord {
	for i := range r.byHash[sum] {
		if bytes.Equal(r.byHash[sum][i].data, data) {
			return &r.byHash[sum][i]
		}
	}
	return nil
}

func (r *resolver) tileEntriesCount() uint64 {
	return uint64(len(r.entries))
}

func (r *resolver) tileContentsCount() uint64 {
	var n uint64
	for _, records := range r.byHash {
		n += uint64(len(records))
	}
	return n
}
