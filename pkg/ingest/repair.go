package ingest

import (
	"context"
	"log/slog"

	"github.com/lampstand/commentary/pkg/commentary"
)

// RepairStats summarizes a repair run.
type RepairStats struct {
	Candidates int
	Repaired   int
	Unparsable int
}

// Repairer fixes segments whose verse fields are half-null, the shape
// a historical import bug left behind. The stored anchorRaw line is
// the source of truth: each candidate is re-parsed and its verse
// fields overwritten with the result.
type Repairer struct {
	segments *commentary.SegmentStore
	logger   *slog.Logger
}

// NewRepairer creates a repairer over the segment store.
func NewRepairer(segments *commentary.SegmentStore, logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{segments: segments, logger: logger}
}

// Repair re-derives verse fields for every half-null segment of a
// source. Candidates whose anchorRaw no longer parses are left alone
// and counted as unparsable.
func (r *Repairer) Repair(ctx context.Context, sourceKey string) (RepairStats, error) {
	candidates, err := r.segments.ListRepairCandidates(sourceKey)
	if err != nil {
		return RepairStats{}, err
	}

	stats := RepairStats{Candidates: len(candidates)}
	for _, seg := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		anchor, ok := ParseAnchorLine(seg.AnchorRaw)
		if !ok {
			r.logger.Warn("anchor line no longer parses, leaving segment as-is",
				"segment", seg.ID,
				"anchorRaw", seg.AnchorRaw,
			)
			stats.Unparsable++
			continue
		}

		if err := r.segments.UpdateVerseFields(seg.ID, anchor.VerseStart, anchor.VerseEnd, anchor.Anchors); err != nil {
			return stats, err
		}
		stats.Repaired++
	}

	r.logger.Info("segment repair complete",
		"source", sourceKey,
		"candidates", stats.Candidates,
		"repaired", stats.Repaired,
		"unparsable", stats.Unparsable,
	)
	return stats, nil
}
