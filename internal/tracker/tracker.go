// Package tracker implements the region→VID continuity engine: given
// a list of detected regions and the current time, it matches each
// region to a previously-seen handle or mints a new one, and expires
// handles that have not been seen recently. It never infers identity
// — only where a region is and how it looks (its fingerprint).
package tracker

import (
	"math"

	"github.com/your-org/visualdelta/internal/fingerprint"
	"github.com/your-org/visualdelta/internal/models"
)

// Config holds the VIDTracker's matching knobs. All fields are
// injectable — the tracker never reads its environment.
type Config struct {
	ExpireMs                       int64
	BBoxDistanceThreshold          float64
	FingerprintSimilarityThreshold float64
	BBoxWeight                     float64
}

// DefaultConfig returns the tracker's default matching thresholds.
func DefaultConfig() Config {
	return Config{
		ExpireMs:                       15000,
		BBoxDistanceThreshold:          0.15,
		FingerprintSimilarityThreshold: 0.6,
		BBoxWeight:                     0.4,
	}
}

// Result is the outcome of one ProcessRegions call.
type Result struct {
	// Assignments maps each input region's index to the VID it was
	// matched or minted to.
	Assignments []models.VID
	Appeared    []models.VID
	Updated     []models.VID
	Expired     []models.VID
}

// Tracker is the VIDTracker: a next-handle counter and a map from VID
// to VIDEntry. Not safe for concurrent use — the pipeline that owns it
// must serialize calls.
type Tracker struct {
	cfg       Config
	nextIndex int
	entries   map[models.VID]models.VIDEntry
}

// New constructs a Tracker with the given config.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		entries: make(map[models.VID]models.VIDEntry),
	}
}

// Size returns the number of live entries.
func (t *Tracker) Size() int {
	return len(t.entries)
}

// Entry returns the live entry for vid, if any.
func (t *Tracker) Entry(vid models.VID) (models.VIDEntry, bool) {
	e, ok := t.entries[vid]
	return e, ok
}

// Reset restores the tracker to its initial state.
func (t *Tracker) Reset() {
	t.nextIndex = 0
	t.entries = make(map[models.VID]models.VIDEntry)
}

type candidate struct {
	vid   models.VID
	score float64
}

// ProcessRegions matches regions against live entries, mints new
// handles for unmatched regions, and expires handles not seen within
// cfg.ExpireMs.
func (t *Tracker) ProcessRegions(regions []models.DetectedRegion, nowMs int64) Result {
	result := Result{
		Assignments: make([]models.VID, len(regions)),
	}

	claimed := make(map[models.VID]bool, len(regions))

	for ri, region := range regions {
		if !region.BBox.Valid() {
			// Malformed region input: skip matching, mint fresh below
			// by treating it as unmatched rather than throwing.
			vid := t.mint(region, nowMs)
			result.Assignments[ri] = vid
			result.Appeared = append(result.Appeared, vid)
			claimed[vid] = true
			continue
		}

		best, found := t.bestCandidate(region, claimed)
		if !found {
			vid := t.mint(region, nowMs)
			result.Assignments[ri] = vid
			result.Appeared = append(result.Appeared, vid)
			claimed[vid] = true
			continue
		}

		entry := t.entries[best.vid]
		entry.BBox = region.BBox
		entry.Fingerprint = region.Fingerprint
		entry.LastSeenMs = nowMs
		entry.Confidence = best.score
		t.entries[best.vid] = entry

		result.Assignments[ri] = best.vid
		result.Updated = append(result.Updated, best.vid)
		claimed[best.vid] = true
	}

	for vid, entry := range t.entries {
		if claimed[vid] {
			continue
		}
		if entry.LastSeenMs < nowMs-t.cfg.ExpireMs {
			result.Expired = append(result.Expired, vid)
			delete(t.entries, vid)
		}
	}

	return result
}

func (t *Tracker) bestCandidate(region models.DetectedRegion, claimed map[models.VID]bool) (candidate, bool) {
	var best candidate
	found := false

	cx, cy := region.BBox.Center()

	for vid, entry := range t.entries {
		if claimed[vid] {
			continue
		}
		if entry.Kind != region.Kind {
			continue
		}

		ex, ey := entry.BBox.Center()
		d := math.Hypot(cx-ex, cy-ey)
		if d > t.cfg.BBoxDistanceThreshold {
			continue
		}

		s := fingerprint.Similarity(entry.Fingerprint, region.Fingerprint)
		if s < t.cfg.FingerprintSimilarityThreshold {
			continue
		}

		score := t.cfg.BBoxWeight*(1-d/t.cfg.BBoxDistanceThreshold) + (1-t.cfg.BBoxWeight)*s
		// Map iteration order is random; on an exact score tie prefer the
		// lower VID number so the match is deterministic across calls.
		if !found || score > best.score || (score == best.score && vid.Less(best.vid)) {
			best = candidate{vid: vid, score: score}
			found = true
		}
	}

	return best, found
}

func (t *Tracker) mint(region models.DetectedRegion, nowMs int64) models.VID {
	t.nextIndex++
	vid := models.NewVID(t.nextIndex)
	t.entries[vid] = models.VIDEntry{
		VID:         vid,
		BBox:        region.BBox,
		Kind:        region.Kind,
		Fingerprint: region.Fingerprint,
		LastSeenMs:  nowMs,
		Confidence:  1.0,
	}
	return vid
}
