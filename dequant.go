package jpx

import "math"

// Dequantization per ITU-T T.800 Annex E. Tier-1 magnitudes are anchored
// at bit 30, so every coefficient first comes down by 31-Mb to its natural
// position. On the reversible path that downshift is the whole story (the
// step size is one); on the irreversible path the step size
// 2^(Rb-eps) * (1 + mu/2^11) folds into a single Ldexp scale.

// subbandGain returns the log2 nominal dynamic-range gain of a subband:
// each high-pass filtering doubles the range.
func subbandGain(t SubbandType) int {
	switch t {
	case SubbandHL, SubbandLH:
		return 1
	case SubbandHH:
		return 2
	}
	return 0
}

// dequantizeSubband maps one quantized subband onto its reconstruction
// grid. precision is the component's bit depth, which anchors the
// irreversible step size.
func dequantizeSubband(sb *QuantizedSubband, reversible bool, precision int) *SubbandGrid {
	g := &SubbandGrid{
		Type:   sb.Type,
		Width:  sb.Width,
		Height: sb.Height,
	}
	shift := 31 - sb.Mb
	if shift < 0 {
		shift = 0
	}

	if reversible {
		g.Ints = make([][]int32, sb.Height)
		for y := 0; y < sb.Height; y++ {
			row := make([]int32, sb.Width)
			for x, m := range sb.Coeffs[y] {
				// Truncate toward zero so sign and magnitude stay paired.
				if m >= 0 {
					row[x] = m >> uint(shift)
				} else {
					row[x] = -((-m) >> uint(shift))
				}
			}
			g.Ints[y] = row
		}
		return g
	}

	rb := precision + subbandGain(sb.Type)
	scale := math.Ldexp(1+float64(sb.Step.Mantissa)/2048, rb-sb.Step.Exponent-shift)
	g.Floats = make([][]float64, sb.Height)
	for y := 0; y < sb.Height; y++ {
		row := make([]float64, sb.Width)
		for x, m := range sb.Coeffs[y] {
			row[x] = float64(m) * scale
		}
		g.Floats[y] = row
	}
	return g
}
