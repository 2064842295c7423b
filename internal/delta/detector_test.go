package delta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/visualdelta/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func countByType(events []models.VisualEvent, t models.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func hasType(events []models.VisualEvent, t models.EventType) bool {
	return countByType(events, t) > 0
}

// S1: debounced hand raise.
func TestComputeDeltasDebouncedHandRaise(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	regions := []models.DetectedRegion{{
		BBox:        models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5},
		Kind:        models.RegionTile,
		Fingerprint: "POS:0055",
		Signals:     models.Signals{HandRaised: boolPtr(true)},
	}}

	r1 := d.ComputeDeltas(state, regions, models.LayoutUnknown, 1000)
	require.True(t, hasType(r1.Events, models.EventVIDAppeared))
	require.True(t, hasType(r1.Events, models.EventSnapshotReceived))
	require.False(t, hasType(r1.Events, models.EventHandRaised))

	r2 := d.ComputeDeltas(r1.NextState, regions, models.LayoutUnknown, 2000)
	require.True(t, hasType(r2.Events, models.EventHandRaised))

	state2 := r2.NextState
	total := 0
	for i := 0; i < 10; i++ {
		res := d.ComputeDeltas(state2, regions, models.LayoutUnknown, 3000+int64(i)*1000)
		total += countByType(res.Events, models.EventHandRaised)
		state2 = res.NextState
	}
	require.Equal(t, 0, total)
}

// S2: drift tolerance.
func TestComputeDeltasDriftTolerance(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 1000)
	require.True(t, hasType(r1.Events, models.EventVIDAppeared))

	r2 := d.ComputeDeltas(r1.NextState, []models.DetectedRegion{{
		BBox: models.BBox{X: 0.02, Y: 0.01, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 2000)
	require.False(t, hasType(r2.Events, models.EventVIDAppeared))
	require.Len(t, r2.NextState.VIDs, 1)
}

// S3: kind mismatch mints a new vid.
func TestComputeDeltasKindMismatchMintsNewVID(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 1000)

	r2 := d.ComputeDeltas(r1.NextState, []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionScreenShare, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 2000)

	require.Len(t, r2.NextState.VIDs, 2)
}

// S4: expiry.
func TestComputeDeltasExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackerConfig.ExpireMs = 5000
	d := New(cfg, models.NewEventFactory())
	state := models.NewVisualState()

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 1000)
	require.Len(t, r1.NextState.VIDs, 1)

	r2 := d.ComputeDeltas(r1.NextState, nil, models.LayoutUnknown, 7000)
	require.True(t, hasType(r2.Events, models.EventVIDDisappeared))
	require.Empty(t, r2.NextState.VIDs)
}

// S5: slide change emitted exactly once.
func TestComputeDeltasSlideChange(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	present := func(slideHash string) models.DetectedRegion {
		return models.DetectedRegion{
			BBox:        models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5},
			Kind:        models.RegionScreenShare,
			Fingerprint: "POS:0055",
			Signals:     models.Signals{IsPresenting: boolPtr(true), SlideHash: slideHash},
		}
	}

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{present("a")}, models.LayoutUnknown, 1000)
	r2 := d.ComputeDeltas(r1.NextState, []models.DetectedRegion{present("a")}, models.LayoutUnknown, 2000)
	require.True(t, hasType(r2.Events, models.EventScreenShareStarted))

	r3 := d.ComputeDeltas(r2.NextState, []models.DetectedRegion{present("b")}, models.LayoutUnknown, 3000)
	require.Equal(t, 1, countByType(r3.Events, models.EventSlideChanged))
	for _, e := range r3.Events {
		if e.Type == models.EventSlideChanged {
			p := e.Payload.(models.SlideChangedPayload)
			require.Equal(t, "a", p.FromHash)
			require.Equal(t, "b", p.ToHash)
		}
	}
}

func TestComputeDeltasLayoutChangedOnlyOnRealChange(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	r1 := d.ComputeDeltas(state, nil, models.LayoutGrid, 1000)
	require.True(t, hasType(r1.Events, models.EventLayoutChanged))

	r2 := d.ComputeDeltas(r1.NextState, nil, models.LayoutGrid, 2000)
	require.False(t, hasType(r2.Events, models.EventLayoutChanged))

	r3 := d.ComputeDeltas(r2.NextState, nil, models.LayoutUnknown, 3000)
	require.False(t, hasType(r3.Events, models.EventLayoutChanged))
}

func TestComputeDeltasMonotonicEventIDs(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 1000)

	var lastID int64 = -1
	for _, e := range r1.Events {
		require.Greater(t, e.ID, lastID)
		lastID = e.ID
	}
}

func TestComputeDeltasReversionCancelsPending(t *testing.T) {
	d := New(DefaultConfig(), models.NewEventFactory())
	state := models.NewVisualState()

	raised := models.DetectedRegion{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
		Signals: models.Signals{HandRaised: boolPtr(true)},
	}
	lowered := models.DetectedRegion{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
		Signals: models.Signals{HandRaised: boolPtr(false)},
	}

	r1 := d.ComputeDeltas(state, []models.DetectedRegion{raised}, models.LayoutUnknown, 1000)
	r2 := d.ComputeDeltas(r1.NextState, []models.DetectedRegion{lowered}, models.LayoutUnknown, 2000) // reverts pending
	r3 := d.ComputeDeltas(r2.NextState, []models.DetectedRegion{raised}, models.LayoutUnknown, 3000)
	r4 := d.ComputeDeltas(r3.NextState, []models.DetectedRegion{raised}, models.LayoutUnknown, 4000)

	require.False(t, hasType(r2.Events, models.EventHandRaised))
	require.False(t, hasType(r3.Events, models.EventHandRaised))
	require.True(t, hasType(r4.Events, models.EventHandRaised))
}
