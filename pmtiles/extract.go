package pmtiles

import (
	"context"
	"io"
)

// ExtractByZoom copies every tile in [minZoom, maxZoom] from r into a new
// archive written to sink, preserving original tile bytes (no
// recompression) and re-running them through the writer's deduplication so
// the subset archive is independently valid. It mirrors the zoom-bounded
// subset extraction offered by the reference CLI's extract/subpyramid
// tooling, built here directly on the Reader/Writer pair instead of a
// bespoke code path.
func ExtractByZoom(ctx context.Context, r *Reader, sink io.WriteSeeker, tmpDir string, minZoom, maxZoom uint8, params FinalizeParams, opts ...WriterOption) error {
	return extract(ctx, r, sink, tmpDir, params, opts, func(id uint64) bool {
		z, _, _ := IDToZxy(id)
		return z >= minZoom && z <= maxZoom
	})
}

// ExtractByTileIDRange copies every tile whose linearized ID falls in
// [minID, maxID] (inclusive) from r into a new archive written to sink.
// This is the primitive region extraction is built on: a caller first
// resolves a geographic bounding box to a set of covering tile-ID ranges at
// each zoom level, then calls this once per range.
func ExtractByTileIDRange(ctx context.Context, r *Reader, sink io.WriteSeeker, tmpDir string, minID, maxID uint64, params FinalizeParams, opts ...WriterOption) error {
	return extract(ctx, r, sink, tmpDir, params, opts, func(id uint64) bool {
		return id >= minID && id <= maxID
	})
}

func extract(ctx context.Context, r *Reader, sink io.WriteSeeker, tmpDir string, params FinalizeParams, opts []WriterOption, include func(uint64) bool) error {
	w, err := NewWriter(sink, tmpDir, opts...)
	if err != nil {
		return err
	}

	err = r.AllEntries(ctx, func(e Entry) error {
		for i := uint64(0); i < uint64(e.RunLength); i++ {
			id := e.TileID + i
			if !include(id) {
				continue
			}
			data, ok, err := r.GetTileByID(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := w.AddRawTile(id, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return w.Finalize(params)
}
