package pmtiles

import (
	"container/heap"
	"context"
	"io"
)

// sourceCursor walks one source archive's flattened tile IDs in ascending
// order, used as one leg of the k-way merge in Merge.
type sourceCursor struct {
	reader *Reader
	ids    []uint64
	pos    int
}

func (c *sourceCursor) current() (uint64, bool) {
	if c.pos >= len(c.ids) {
		return 0, false
	}
	return c.ids[c.pos], true
}

func (c *sourceCursor) advance() { c.pos++ }

// mergeHeapItem is one candidate next-tile across all sources, ordered by
// tile ID ascending and, for ties, by source index descending so that later
// sources in the input list win collisions (last-writer-wins).
type mergeHeapItem struct {
	id     uint64
	source int
}

type mergeHeap []mergeHeapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].id != h[j].id {
		return h[i].id < h[j].id
	}
	return h[i].source > h[j].source
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(mergeHeapItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge combines several archives into one, addressing overlapping tile IDs
// with last-writer-wins semantics: when two or more sources address the same
// tile, the one appearing latest in sources supplies the content. Every
// source's tile IDs are first collected into memory, so memory use grows
// with the combined tile count; those (already clustered) sequences are then
// walked with a k-way heap merge rather than concatenated and re-sorted.
func Merge(ctx context.Context, sources []*Reader, sink io.WriteSeeker, tmpDir string, params FinalizeParams, opts ...WriterOption) error {
	cursors := make([]*sourceCursor, len(sources))
	for i, r := range sources {
		var ids []uint64
		err := r.AllEntries(ctx, func(e Entry) error {
			for k := uint64(0); k < uint64(e.RunLength); k++ {
				ids = append(ids, e.TileID+k)
			}
			return nil
		})
		if err != nil {
			return err
		}
		cursors[i] = &sourceCursor{reader: r, ids: ids}
	}

	h := make(mergeHeap, 0, len(cursors))
	for i, c := range cursors {
		if id, ok := c.current(); ok {
			h = append(h, mergeHeapItem{id: id, source: i})
		}
	}
	heap.Init(&h)

	w, err := NewWriter(sink, tmpDir, opts...)
	if err != nil {
		return err
	}

	for h.Len() > 0 {
		top := heap.Pop(&h).(mergeHeapItem)
		winner := top

		// Discard shadowed entries for the same tile ID from lower-priority
		// sources, advancing their cursors without emitting anything.
		for h.Len() > 0 && h[0].id == winner.id {
			loser := heap.Pop(&h).(mergeHeapItem)
			cursors[loser.source].advance()
			if id, ok := cursors[loser.source].current(); ok {
				heap.Push(&h, mergeHeapItem{id: id, source: loser.source})
			}
		}

		data, ok, err := cursors[winner.source].reader.GetTileByID(ctx, winner.id)
		if err != nil {
			return err
		}
		if ok {
			if err := w.AddRawTile(winner.id, data); err != nil {
				return err
			}
		}

		cursors[winner.source].advance()
		if id, ok := cursors[winner.source].current(); ok {
			heap.Push(&h, mergeHeapItem{id: id, source: winner.source})
		}
	}

	return w.Finalize(params)
}
