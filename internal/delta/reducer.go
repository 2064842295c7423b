// Package delta implements the two components that turn tracked
// regions into a world model: the debounced DeltaDetector and the
// pure VisualState reducer it is built on top of.
package delta

import "github.com/your-org/visualdelta/internal/models"

// Reduce applies a single event to state and returns the resulting
// state. It is pure: the same (state, event) pair always yields the
// same result, and unknown event variants are no-ops so a reducer
// built against an older schema never panics on a newer event stream.
//
// Reduce is independent of DeltaDetector — given any event log it can
// reconstruct state from scratch, which is what replay and the
// idempotence tests rely on.
func Reduce(state models.VisualState, event models.VisualEvent) models.VisualState {
	next := state.Clone()

	switch event.Type {
	case models.EventSnapshotReceived:
		next.LastSnapshotMs = event.TsEmitMs
		next.SnapshotCount++

	case models.EventVIDAppeared:
		p, ok := event.Payload.(models.VIDAppearedPayload)
		if !ok {
			return next
		}
		next.VIDs[p.VID] = models.VIDState{
			VID:        p.VID,
			BBox:       p.BBox,
			Kind:       p.Kind,
			Confidence: event.Confidence,
			LastSeenMs: event.TsEmitMs,
		}

	case models.EventVIDDisappeared:
		p, ok := event.Payload.(models.VIDDisappearedPayload)
		if !ok {
			return next
		}
		delete(next.VIDs, p.VID)
		if next.ScreenShare.Active && next.ScreenShare.VID == p.VID {
			next.ScreenShare = models.ScreenShareState{}
		}
		next.RecomputeHandRaisedCount()

	case models.EventHandRaised:
		p, ok := event.Payload.(models.HandRaisedPayload)
		if !ok {
			return next
		}
		setHandRaised(next, p.VID, true)
		next.RecomputeHandRaisedCount()

	case models.EventHandLowered:
		p, ok := event.Payload.(models.HandLoweredPayload)
		if !ok {
			return next
		}
		setHandRaised(next, p.VID, false)
		next.RecomputeHandRaisedCount()

	case models.EventScreenShareStarted:
		p, ok := event.Payload.(models.ScreenShareStartedPayload)
		if !ok {
			return next
		}
		setPresenting(next, p.VID, true, p.SlideHash)
		next.ScreenShare = models.ScreenShareState{Active: true, VID: p.VID, SlideHash: p.SlideHash}

	case models.EventScreenShareStopped:
		p, ok := event.Payload.(models.ScreenShareStoppedPayload)
		if !ok {
			return next
		}
		setPresenting(next, p.VID, false, "")
		if next.ScreenShare.VID == p.VID {
			next.ScreenShare = models.ScreenShareState{}
		}

	case models.EventSlideChanged:
		p, ok := event.Payload.(models.SlideChangedPayload)
		if !ok {
			return next
		}
		if vs, ok := next.VIDs[p.VID]; ok {
			vs.Signals.SlideHash = p.ToHash
			next.VIDs[p.VID] = vs
		}
		if next.ScreenShare.Active && next.ScreenShare.VID == p.VID {
			next.ScreenShare.SlideHash = p.ToHash
		}

	case models.EventLayoutChanged:
		p, ok := event.Payload.(models.LayoutChangedPayload)
		if !ok {
			return next
		}
		next.Layout = p.To

	case models.EventAudioVideoLink:
		p, ok := event.Payload.(models.AudioVideoLinkPayload)
		if !ok {
			return next
		}
		if vs, ok := next.VIDs[p.VID]; ok {
			sid := p.AudioSID
			vs.AudioSID = &sid
			next.VIDs[p.VID] = vs
		}
	}

	return next
}

func setHandRaised(state models.VisualState, vid models.VID, v bool) {
	vs, ok := state.VIDs[vid]
	if !ok {
		return
	}
	vv := v
	vs.Signals.HandRaised = &vv
	state.VIDs[vid] = vs
}

func setPresenting(state models.VisualState, vid models.VID, v bool, slideHash string) {
	vs, ok := state.VIDs[vid]
	if !ok {
		return
	}
	vv := v
	vs.Signals.IsPresenting = &vv
	if v {
		vs.Signals.SlideHash = slideHash
	}
	state.VIDs[vid] = vs
}
