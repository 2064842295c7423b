package delta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/visualdelta/internal/models"
)

func TestReduceVIDAppeared(t *testing.T) {
	state := models.NewVisualState()
	vid := models.NewVID(1)
	ev := models.VisualEvent{
		Type:       models.EventVIDAppeared,
		Confidence: 0.9,
		Payload:    models.VIDAppearedPayload{VID: vid, Kind: models.RegionTile, BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}},
	}

	next := Reduce(state, ev)
	require.Contains(t, next.VIDs, vid)
	require.Equal(t, 0.9, next.VIDs[vid].Confidence)
}

func TestReduceVIDDisappearedClearsScreenShare(t *testing.T) {
	state := models.NewVisualState()
	vid := models.NewVID(1)
	state.VIDs[vid] = models.VIDState{VID: vid}
	state.ScreenShare = models.ScreenShareState{Active: true, VID: vid}

	next := Reduce(state, models.VisualEvent{
		Type:    models.EventVIDDisappeared,
		Payload: models.VIDDisappearedPayload{VID: vid},
	})

	require.NotContains(t, next.VIDs, vid)
	require.False(t, next.ScreenShare.Active)
}

func TestReduceHandRaisedRecomputesCount(t *testing.T) {
	state := models.NewVisualState()
	vid := models.NewVID(1)
	state.VIDs[vid] = models.VIDState{VID: vid}

	next := Reduce(state, models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	})
	require.Equal(t, 1, next.HandRaisedCount)
	require.True(t, next.VIDs[vid].Signals.HandRaisedOr())

	next2 := Reduce(next, models.VisualEvent{
		Type:    models.EventHandLowered,
		Payload: models.HandLoweredPayload{VID: vid},
	})
	require.Equal(t, 0, next2.HandRaisedCount)
}

func TestReduceScreenShareStartedStopped(t *testing.T) {
	state := models.NewVisualState()
	vid := models.NewVID(1)
	state.VIDs[vid] = models.VIDState{VID: vid}

	next := Reduce(state, models.VisualEvent{
		Type:    models.EventScreenShareStarted,
		Payload: models.ScreenShareStartedPayload{VID: vid, SlideHash: "abc123de"},
	})
	require.True(t, next.ScreenShare.Active)
	require.Equal(t, vid, next.ScreenShare.VID)
	require.Equal(t, "abc123de", next.ScreenShare.SlideHash)

	next2 := Reduce(next, models.VisualEvent{
		Type:    models.EventScreenShareStopped,
		Payload: models.ScreenShareStoppedPayload{VID: vid},
	})
	require.False(t, next2.ScreenShare.Active)
}

func TestReduceSlideChanged(t *testing.T) {
	state := models.NewVisualState()
	vid := models.NewVID(1)
	state.VIDs[vid] = models.VIDState{VID: vid}
	state.ScreenShare = models.ScreenShareState{Active: true, VID: vid, SlideHash: "a"}

	next := Reduce(state, models.VisualEvent{
		Type:    models.EventSlideChanged,
		Payload: models.SlideChangedPayload{VID: vid, FromHash: "a", ToHash: "b"},
	})
	require.Equal(t, "b", next.ScreenShare.SlideHash)
	require.Equal(t, "b", next.VIDs[vid].Signals.SlideHash)
}

func TestReduceLayoutChanged(t *testing.T) {
	state := models.NewVisualState()
	next := Reduce(state, models.VisualEvent{
		Type:    models.EventLayoutChanged,
		Payload: models.LayoutChangedPayload{From: models.LayoutUnknown, To: models.LayoutSpeaker},
	})
	require.Equal(t, models.LayoutSpeaker, next.Layout)
}

func TestReduceSnapshotReceivedIncrementsCount(t *testing.T) {
	state := models.NewVisualState()
	next := Reduce(state, models.VisualEvent{Type: models.EventSnapshotReceived, TsEmitMs: 1234, Payload: models.SnapshotReceivedPayload{}})
	require.Equal(t, int64(1), next.SnapshotCount)
	require.Equal(t, int64(1234), next.LastSnapshotMs)
}

func TestReduceUnknownVariantIsNoop(t *testing.T) {
	state := models.NewVisualState()
	next := Reduce(state, models.VisualEvent{Type: models.EventType("some_future_event")})
	require.Equal(t, state, next)
}
