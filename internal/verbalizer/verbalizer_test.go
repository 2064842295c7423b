package verbalizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/visualdelta/internal/models"
)

func TestValidateOutputRejectsProhibitedTerm(t *testing.T) {
	r := ValidateOutput("The happy young woman raised her hand.", 120)
	require.False(t, r.Valid)
	require.Contains(t, r.Reason, "prohibited term")
}

func TestValidateOutputRejectsTooLong(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	r := ValidateOutput(string(long), 120)
	require.False(t, r.Valid)
}

func TestValidateOutputRejectsEmpty(t *testing.T) {
	r := ValidateOutput("   ", 120)
	require.False(t, r.Valid)
}

func TestValidateOutputAcceptsSafeText(t *testing.T) {
	r := ValidateOutput("A participant raised a hand in the top left.", 120)
	require.True(t, r.Valid)
}

func stateWithVID(vid models.VID, bbox models.BBox) models.VisualState {
	s := models.NewVisualState()
	s.VIDs[vid] = models.VIDState{VID: vid, BBox: bbox}
	return s
}

func TestVerbalizeTemplatePath(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	vid := models.NewVID(1)
	state := stateWithVID(vid, models.BBox{X: 0, Y: 0, W: 0.2, H: 0.2})

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	}, state)

	require.Equal(t, "Participant top left raised their hand", text)
}

type stubHandler struct {
	text string
	err  error
}

func (s stubHandler) Verbalize(ctx context.Context, llmCtx Context) (string, error) {
	return s.text, s.err
}

// S7: prohibited LLM output falls back to the template.
func TestVerbalizeLLMOutputRejectedFallsBackToTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLLM = true
	v := New(cfg, stubHandler{text: "The happy young woman raised her hand."}, nil)

	vid := models.NewVID(1)
	state := stateWithVID(vid, models.BBox{X: 0, Y: 0, W: 0.2, H: 0.2})

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	}, state)

	require.Equal(t, "Participant top left raised their hand", text)
}

func TestVerbalizeLLMHandlerErrorFallsBackToTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLLM = true
	v := New(cfg, stubHandler{err: assertErr{}}, nil)

	vid := models.NewVID(1)
	state := stateWithVID(vid, models.BBox{X: 0, Y: 0, W: 0.2, H: 0.2})

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	}, state)

	require.Equal(t, "Participant top left raised their hand", text)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestVerbalizeUseLLMTrueWithoutHandlerUsesTemplateSilently(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLLM = true
	v := New(cfg, nil, nil)

	vid := models.NewVID(1)
	state := stateWithVID(vid, models.BBox{X: 0, Y: 0, W: 0.2, H: 0.2})

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	}, state)

	require.Equal(t, "Participant top left raised their hand", text)
}

func TestVerbalizeAcceptsValidLLMOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLLM = true
	v := New(cfg, stubHandler{text: "A participant raised a hand in the top left."}, nil)

	vid := models.NewVID(1)
	state := stateWithVID(vid, models.BBox{X: 0, Y: 0, W: 0.2, H: 0.2})

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventHandRaised,
		Payload: models.HandRaisedPayload{VID: vid},
	}, state)

	require.Equal(t, "A participant raised a hand in the top left.", text)
}

func TestDescribePositionGridCells(t *testing.T) {
	require.Equal(t, "top left", describePosition(models.BBox{X: 0, Y: 0}))
	require.Equal(t, "middle center", describePosition(models.BBox{X: 0.4, Y: 0.4}))
	require.Equal(t, "bottom right", describePosition(models.BBox{X: 0.9, Y: 0.9}))
}

func TestVerbalizeLayoutChanged(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	state := models.NewVisualState()

	text := v.Verbalize(context.Background(), models.VisualEvent{
		Type:    models.EventLayoutChanged,
		Payload: models.LayoutChangedPayload{From: models.LayoutGrid, To: models.LayoutSpeaker},
	}, state)

	require.Equal(t, "The meeting layout changed to speaker", text)
}
