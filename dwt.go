package jpx

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/wavelet"
)

// Inverse discrete wavelet transform per ITU-T T.800 Annex F. Synthesis
// runs coarsest to finest: at each level the current low-pass grid combines
// with that level's HL/LH/HH bands, rows first then columns. The 1-D
// primitives take the packed layout [L0..Lsn-1, H0..Hdn-1] and interleave
// in place.
//
// The parity (cas) of each 1-D pass falls out of the band dimensions: when
// the high half is the larger one the first reconstructed sample is a
// high-pass sample.

// Lifting coefficients for the 9/7 irreversible filter (T.800 Table F.4).
const (
	lift97Alpha float64 = -1.586134342059924
	lift97Beta  float64 = -0.052980118572961
	lift97Gamma float64 = 0.882911075530934
	lift97Delta float64 = 0.443506852043971
	lift97K     float64 = 1.230174104914001
	lift97InvK  float64 = 1.0 / 1.230174104914001
)

// synthesize1D53 runs the inverse 5/3 transform in place over packed data.
func synthesize1D53(data, low, high []int32, cas int) {
	if len(data) <= 1 {
		return
	}
	wavelet.Synthesize53(data, cas, low, high)
}

// synthesize1D97 runs the inverse 9/7 transform in place over packed data.
// Scaling is the standard K / 1/K pair; the subband gains handled at
// dequantization keep the overall level-1 pass-through exact.
func synthesize1D97(data, lowBuf, highBuf []float64, cas int) {
	n := len(data)
	if n <= 1 {
		return
	}
	sn := (n + 1) / 2
	dn := n / 2
	if cas != 0 {
		sn, dn = dn, sn
	}
	low := lowBuf[:sn]
	high := highBuf[:dn]
	copy(low, data[:sn])
	copy(high, data[sn:n])

	wavelet.ScaleSlice(low, sn, lift97K)
	wavelet.ScaleSlice(high, dn, lift97InvK)

	// Update steps (target = low) run at phase 1-cas, predict steps
	// (target = high) at phase cas.
	wavelet.LiftStep97(low, sn, high, dn, lift97Delta, 1-cas)
	wavelet.LiftStep97(high, dn, low, sn, lift97Gamma, cas)
	wavelet.LiftStep97(low, sn, high, dn, lift97Beta, 1-cas)
	wavelet.LiftStep97(high, dn, low, sn, lift97Alpha, cas)

	wavelet.Interleave(data, low, sn, high, dn, cas)
}

// bandsForLevel pulls the HL/LH/HH triplet of one resolution level out of
// the ordered band list.
func bandsForLevel(c *DwtCoefficients, level int) (hl, lh, hh *SubbandGrid) {
	base := 1 + 3*(level-1)
	return c.Bands[base], c.Bands[base+1], c.Bands[base+2]
}

func checkBands(c *DwtCoefficients) error {
	if c.Levels < 0 || len(c.Bands) != 1+3*c.Levels {
		return fmt.Errorf("%w: %d subbands for %d levels", ErrInvalidGeometry, len(c.Bands), c.Levels)
	}
	return nil
}

// synthesizeInts reconstructs the reversible (integer) sample grid from the
// decomposition.
func synthesizeInts(c *DwtCoefficients) ([][]int32, error) {
	if err := checkBands(c); err != nil {
		return nil, err
	}
	ll := c.Bands[0]
	cur := make([][]int32, ll.Height)
	for y := range cur {
		cur[y] = append([]int32(nil), ll.Ints[y]...)
	}
	curW, curH := ll.Width, ll.Height

	for level := 1; level <= c.Levels; level++ {
		hl, lh, hh := bandsForLevel(c, level)
		cur = combineLevel53(cur, curW, curH, hl, lh, hh)
		curW += hl.Width
		curH += lh.Height
	}
	return cur, nil
}

// synthesizeFloats reconstructs the irreversible (real) sample grid.
func synthesizeFloats(c *DwtCoefficients) ([][]float64, error) {
	if err := checkBands(c); err != nil {
		return nil, err
	}
	ll := c.Bands[0]
	cur := make([][]float64, ll.Height)
	for y := range cur {
		cur[y] = append([]float64(nil), ll.Floats[y]...)
	}
	curW, curH := ll.Width, ll.Height

	for level := 1; level <= c.Levels; level++ {
		hl, lh, hh := bandsForLevel(c, level)
		cur = combineLevel97(cur, curW, curH, hl, lh, hh)
		curW += hl.Width
		curH += lh.Height
	}
	return cur, nil
}

// combineLevel53 merges one resolution level: horizontal synthesis over the
// (LL|HL) and (LH|HH) row pairs, then vertical synthesis down every packed
// column.
func combineLevel53(ll [][]int32, llW, llH int, hl, lh, hh *SubbandGrid) [][]int32 {
	outW := llW + hl.Width
	outH := llH + lh.Height
	casH := 0
	if hl.Width > llW {
		casH = 1
	}
	casV := 0
	if lh.Height > llH {
		casV = 1
	}

	maxDim := outW
	if outH > maxDim {
		maxDim = outH
	}
	maxHalf := (maxDim + 1) / 2
	low := make([]int32, maxHalf)
	high := make([]int32, maxHalf)
	col := make([]int32, outH)

	out := make([][]int32, outH)
	for y := range out {
		out[y] = make([]int32, outW)
	}
	for y := 0; y < llH; y++ {
		copy(out[y][:llW], ll[y])
		copy(out[y][llW:], hl.Ints[y])
		synthesize1D53(out[y], low, high, casH)
	}
	for y := 0; y < lh.Height; y++ {
		copy(out[llH+y][:llW], lh.Ints[y])
		copy(out[llH+y][llW:], hh.Ints[y])
		synthesize1D53(out[llH+y], low, high, casH)
	}

	for x := 0; x < outW; x++ {
		for y := 0; y < outH; y++ {
			col[y] = out[y][x]
		}
		synthesize1D53(col, low, high, casV)
		for y := 0; y < outH; y++ {
			out[y][x] = col[y]
		}
	}
	return out
}

func combineLevel97(ll [][]float64, llW, llH int, hl, lh, hh *SubbandGrid) [][]float64 {
	outW := llW + hl.Width
	outH := llH + lh.Height
	casH := 0
	if hl.Width > llW {
		casH = 1
	}
	casV := 0
	if lh.Height > llH {
		casV = 1
	}

	maxDim := outW
	if outH > maxDim {
		maxDim = outH
	}
	maxHalf := (maxDim + 1) / 2
	low := make([]float64, maxHalf)
	high := make([]float64, maxHalf)
	col := make([]float64, outH)

	out := make([][]float64, outH)
	for y := range out {
		out[y] = make([]float64, outW)
	}
	for y := 0; y < llH; y++ {
		copy(out[y][:llW], ll[y])
		copy(out[y][llW:], hl.Floats[y])
		synthesize1D97(out[y], low, high, casH)
	}
	for y := 0; y < lh.Height; y++ {
		copy(out[llH+y][:llW], lh.Floats[y])
		copy(out[llH+y][llW:], hh.Floats[y])
		synthesize1D97(out[llH+y], low, high, casH)
	}

	for x := 0; x < outW; x++ {
		for y := 0; y < outH; y++ {
			col[y] = out[y][x]
		}
		synthesize1D97(col, low, high, casV)
		for y := 0; y < outH; y++ {
			out[y][x] = col[y]
		}
	}
	return out
}
