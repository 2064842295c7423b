package fingerprint

import "testing"

import "github.com/stretchr/testify/require"

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(0.12, 0.34, 0.5, 0.6, "")
	b := Generate(0.12, 0.34, 0.5, 0.6, "")
	require.Equal(t, a, b)
	require.Equal(t, "POS:1356", a)
}

func TestGenerateWithColor(t *testing.T) {
	fp := Generate(0.0, 0.0, 0.5, 0.5, "FF00AA")
	require.Equal(t, "POS:0055|CLR:ff00aa", fp)
}

func TestSimilarityEqualStrings(t *testing.T) {
	require.Equal(t, 1.0, Similarity("POS:0055", "POS:0055"))
}

func TestSimilarityEmpty(t *testing.T) {
	require.Equal(t, 0.0, Similarity("", ""))
	require.Equal(t, 0.0, Similarity("POS:0055", ""))
}

func TestSimilarityPositionDrift(t *testing.T) {
	// one bucket off on every digit: position score should still be high
	s := Similarity("POS:0055", "POS:1166")
	require.Greater(t, s, 0.5)
	require.Less(t, s, 1.0)
}

func TestSimilarityNoColorDefaultsHalf(t *testing.T) {
	s1 := Similarity("POS:0055", "POS:0055|CLR:ffffff")
	// position matches perfectly, color falls back to 0.5 since one side lacks color
	require.InDelta(t, 0.6*1.0+0.4*0.5, s1, 1e-9)
}

func TestSimilarityFallbackCharComparison(t *testing.T) {
	s := Similarity("abcdef", "abcxyz")
	require.InDelta(t, 3.0/6.0, s, 1e-9)
}

func TestContentHashDeterministic(t *testing.T) {
	h1 := ContentHash("slide-one")
	h2 := ContentHash("slide-one")
	require.Equal(t, h1, h2)
	require.Len(t, h1, 8)
	require.NotEqual(t, h1, ContentHash("slide-two"))
}
