package pmtiles

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/dustin/go-humanize"
)

// VerifyReport summarizes a Verify run: the statistics recomputed by walking
// the archive, for comparison against what the header claims.
type VerifyReport struct {
	AddressedTilesCount uint64
	TileEntriesCount    uint64
	TileContentsCount   uint64
	MinZoom, MaxZoom    uint8
}

// Verify walks every directory entry in the archive and cross-checks the
// header's self-reported statistics against what was actually found:
// addressed tile count, entry count, distinct tile content count (via a
// roaring bitmap over byte offsets, since identical content shares an
// offset), and the min/max zoom implied by the entries actually present.
// It mirrors the consistency checks performed by the reference verify tool.
func Verify(ctx context.Context, r *Reader) (VerifyReport, error) {
	var report VerifyReport
	offsets := roaring64.New()
	first := true

	var outOfBounds []string
	err := r.AllEntries(ctx, func(e Entry) error {
		report.AddressedTilesCount += uint64(e.RunLength)
		report.TileEntriesCount++
		offsets.Add(e.Offset)

		if e.Offset+uint64(e.Length) > r.Header.TileDataLength {
			outOfBounds = append(outOfBounds, fmt.Sprintf("tile %d: range [%d,%d) exceeds tile data section of length %s",
				e.TileID, e.Offset, e.Offset+uint64(e.Length), humanize.Bytes(r.Header.TileDataLength)))
		}

		z, _, _ := IDToZxy(e.TileID)
		if first {
			report.MinZoom, report.MaxZoom = z, z
			first = false
		} else {
			if z < report.MinZoom {
				report.MinZoom = z
			}
			if z > report.MaxZoom {
				report.MaxZoom = z
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	report.TileContentsCount = offsets.GetCardinality()

	h := r.Header
	problems := outOfBounds
	if report.AddressedTilesCount != h.AddressedTilesCount {
		problems = append(problems, fmt.Sprintf("addressed tiles: header=%d actual=%d", h.AddressedTilesCount, report.AddressedTilesCount))
	}
	if report.TileEntriesCount != h.TileEntriesCount {
		problems = append(problems, fmt.Sprintf("tile entries: header=%d actual=%d", h.TileEntriesCount, report.TileEntriesCount))
	}
	if report.TileContentsCount != h.TileContentsCount {
		problems = append(problems, fmt.Sprintf("tile contents: header=%d actual=%d", h.TileContentsCount, report.TileContentsCount))
	}
	if report.MinZoom != h.MinZoom || report.MaxZoom != h.MaxZoom {
		problems = append(problems, fmt.Sprintf("zoom range: header=[%d,%d] actual=[%d,%d]", h.MinZoom, h.MaxZoom, report.MinZoom, report.MaxZoom))
	}
	if h.CenterZoom < h.MinZoom || h.CenterZoom > h.MaxZoom {
		problems = append(problems, fmt.Sprintf("center zoom %d outside [%d,%d]", h.CenterZoom, h.MinZoom, h.MaxZoom))
	}
	if h.MinLonE7 >= h.MaxLonE7 || h.MinLatE7 >= h.MaxLatE7 {
		problems = append(problems, "bounding box has zero or negative area")
	}

	if len(problems) > 0 {
		return report, fmt.Errorf("pmtiles: verify failed: %v", problems)
	}
	return report, nil
}
