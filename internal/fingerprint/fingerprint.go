// Package fingerprint implements the pure, stateless primitives the
// tracker uses to decide "is this the same region as before?" without
// ever touching identity: a position bucket plus an optional average
// color, and a rolling hash for content-change detection.
package fingerprint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Generate emits a position-bucket fingerprint for bbox, optionally
// suffixed with a color bucket when colorHex is non-empty. Each
// position digit is floor(value*10) clamped to [0,9].
func Generate(x, y, w, h float64, colorHex string) string {
	px := bucket(x)
	py := bucket(y)
	pw := bucket(w)
	ph := bucket(h)
	fp := fmt.Sprintf("POS:%d%d%d%d", px, py, pw, ph)
	if colorHex != "" {
		fp += "|CLR:" + strings.ToLower(colorHex)
	}
	return fp
}

func bucket(v float64) int {
	d := int(math.Floor(v * 10))
	if d < 0 {
		d = 0
	}
	if d > 9 {
		d = 9
	}
	return d
}

// Similarity scores two fingerprints in [0,1]. Position-bucket
// fingerprints are compared on position (60%) and color (40%); any
// other pair of strings falls back to a fraction-of-equal-characters
// comparison.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	if strings.HasPrefix(a, "POS:") && strings.HasPrefix(b, "POS:") {
		return positionSimilarity(a, b)
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	equal := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(maxLen)
}

func positionSimilarity(a, b string) float64 {
	aPos, aClr := splitFingerprint(a)
	bPos, bClr := splitFingerprint(b)

	posScore := digitSimilarity(aPos, bPos)

	var clrScore float64 = 0.5
	haveClr := aClr != "" && bClr != ""
	if haveClr {
		clrScore = colorSimilarity(aClr, bClr)
	}

	return 0.6*posScore + 0.4*clrScore
}

func splitFingerprint(fp string) (pos, clr string) {
	parts := strings.SplitN(fp, "|", 2)
	pos = strings.TrimPrefix(parts[0], "POS:")
	if len(parts) == 2 {
		clr = strings.TrimPrefix(parts[1], "CLR:")
	}
	return pos, clr
}

func digitSimilarity(a, b string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		ad := digitOf(a[i])
		bd := digitOf(b[i])
		sum += 1 - math.Abs(float64(ad-bd))/10
	}
	return sum / float64(n)
}

func digitOf(c byte) int {
	if c < '0' || c > '9' {
		return 0
	}
	return int(c - '0')
}

func colorSimilarity(a, b string) float64 {
	ar, ag, ab, aok := parseHex(a)
	br, bg, bb, bok := parseHex(b)
	if !aok || !bok {
		return 0.5
	}
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	maxDist := math.Sqrt(3 * 255 * 255)
	return 1 - dist/maxDist
}

func parseHex(s string) (r, g, b int, ok bool) {
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseInt(s[0:2], 16, 32)
	gv, err2 := strconv.ParseInt(s[2:4], 16, 32)
	bv, err3 := strconv.ParseInt(s[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}

// ContentHash returns a deterministic 32-bit rolling hash of s,
// rendered as 8 lowercase hex digits.
func ContentHash(s string) string {
	var h uint32 = 0
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return fmt.Sprintf("%08x", h)
}
