package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/visualdelta/internal/adgate"
	"github.com/your-org/visualdelta/internal/delta"
	"github.com/your-org/visualdelta/internal/models"
	"github.com/your-org/visualdelta/internal/verbalizer"
)

func defaultConfig() Config {
	return Config{
		Detector:   delta.DefaultConfig(),
		Gate:       adgate.DefaultConfig(),
		Verbalizer: verbalizer.DefaultConfig(),
	}
}

func TestProcessSnapshotEmitsAppearedAndEventuallySpeaks(t *testing.T) {
	p := New(defaultConfig(), nil, nil)

	regions := []models.DetectedRegion{{
		BBox:        models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5},
		Kind:        models.RegionTile,
		Fingerprint: "POS:0055",
		Signals:     models.Signals{HandRaised: boolPtr(true)},
	}}

	r1 := p.ProcessSnapshot(context.Background(), regions, models.LayoutUnknown, 1000, nil)
	require.NotEmpty(t, r1.Events)

	r2 := p.ProcessSnapshot(context.Background(), regions, models.LayoutUnknown, 2000, nil)
	found := false
	for _, e := range r2.Events {
		if e.Type == models.EventHandRaised {
			found = true
		}
	}
	require.True(t, found)

	r3 := p.ProcessSnapshot(context.Background(), regions, models.LayoutUnknown, 5000, nil)
	require.NotEmpty(t, r3.SpokenText)
}

func TestResetRestoresInitialState(t *testing.T) {
	p := New(defaultConfig(), nil, nil)
	p.ProcessSnapshot(context.Background(), []models.DetectedRegion{{
		BBox: models.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: models.RegionTile, Fingerprint: "POS:0055",
	}}, models.LayoutUnknown, 1000, nil)

	require.NotEmpty(t, p.State().VIDs)

	p.Reset()
	require.Empty(t, p.State().VIDs)
}

func boolPtr(b bool) *bool { return &b }
