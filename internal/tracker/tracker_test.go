package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/visualdelta/internal/fingerprint"
	"github.com/your-org/visualdelta/internal/models"
)

func region(x, y, w, h float64, kind models.RegionKind) models.DetectedRegion {
	return models.DetectedRegion{
		BBox:        models.BBox{X: x, Y: y, W: w, H: h},
		Kind:        kind,
		Fingerprint: fingerprint.Generate(x, y, w, h, ""),
	}
}

func TestProcessRegionsMintsNewVIDs(t *testing.T) {
	tr := New(DefaultConfig())
	regions := []models.DetectedRegion{
		region(0.0, 0.0, 0.3, 0.3, models.RegionTile),
		region(0.5, 0.5, 0.3, 0.3, models.RegionTile),
	}
	res := tr.ProcessRegions(regions, 1000)

	require.Len(t, res.Assignments, 2)
	require.Len(t, res.Appeared, 2)
	require.Empty(t, res.Updated)
	require.NotEqual(t, res.Assignments[0], res.Assignments[1])
	require.Equal(t, "v1", res.Assignments[0].String())
	require.Equal(t, "v2", res.Assignments[1].String())
}

func TestProcessRegionsTracksContinuity(t *testing.T) {
	tr := New(DefaultConfig())
	first := tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 1000)
	vid := first.Assignments[0]

	// small drift in position, same kind, same fingerprint bucket
	second := tr.ProcessRegions([]models.DetectedRegion{
		region(0.11, 0.1, 0.3, 0.3, models.RegionTile),
	}, 2000)

	require.Equal(t, vid, second.Assignments[0])
	require.Equal(t, []models.VID{vid}, second.Updated)
	require.Empty(t, second.Appeared)
}

func TestProcessRegionsDifferentKindNeverMatches(t *testing.T) {
	tr := New(DefaultConfig())
	tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 1000)

	res := tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionScreenShare),
	}, 1500)

	require.Len(t, res.Appeared, 1)
}

func TestProcessRegionsExpiresStaleEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExpireMs = 1000
	tr := New(cfg)

	first := tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 0)
	vid := first.Assignments[0]

	res := tr.ProcessRegions(nil, 5000)
	require.Equal(t, []models.VID{vid}, res.Expired)
	require.Equal(t, 0, tr.Size())
}

func TestProcessRegionsDoesNotExpireRecentlySeen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExpireMs = 5000
	tr := New(cfg)

	tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 0)

	res := tr.ProcessRegions(nil, 2000)
	require.Empty(t, res.Expired)
	require.Equal(t, 1, tr.Size())
}

func TestProcessRegionsLargeDriftMintsNewVID(t *testing.T) {
	tr := New(DefaultConfig())
	tr.ProcessRegions([]models.DetectedRegion{
		region(0.0, 0.0, 0.3, 0.3, models.RegionTile),
	}, 0)

	res := tr.ProcessRegions([]models.DetectedRegion{
		region(0.6, 0.6, 0.3, 0.3, models.RegionTile),
	}, 1000)

	require.Len(t, res.Appeared, 1)
}

func TestProcessRegionsInvalidBBoxMintsWithoutPanic(t *testing.T) {
	tr := New(DefaultConfig())
	bad := models.DetectedRegion{
		BBox: models.BBox{X: -1, Y: 0, W: 0, H: 0},
		Kind: models.RegionTile,
	}
	require.NotPanics(t, func() {
		res := tr.ProcessRegions([]models.DetectedRegion{bad}, 0)
		require.Len(t, res.Appeared, 1)
	})
}

func TestResetClearsState(t *testing.T) {
	tr := New(DefaultConfig())
	tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 0)
	require.Equal(t, 1, tr.Size())

	tr.Reset()
	require.Equal(t, 0, tr.Size())

	res := tr.ProcessRegions([]models.DetectedRegion{
		region(0.1, 0.1, 0.3, 0.3, models.RegionTile),
	}, 0)
	require.Equal(t, "v1", res.Assignments[0].String())
}
