package jpx

import "math"

// Post-processing: turn the per-component sample planes of a reconstructed
// tile into interleaved output bytes. The stages run in order: upsampling
// of subsampled components, palette mapping, channel reordering into
// output-slot order, the inverse multiple-component transform on the first
// three slots, and finally the level shift with clamping to the channel's
// range.
//
// Sample planes travel as float64 throughout. Reversible samples are exact
// integers in that representation, so the RCT path can round-trip through
// int32 without loss.

// upsampleBilinear scales a plane up to outW x outH with bilinear
// interpolation. Source coordinates follow the half-pixel-center
// convention, clamped at the edges.
func upsampleBilinear(src [][]float64, outW, outH int) [][]float64 {
	inH := len(src)
	if inH == 0 {
		return make([][]float64, 0)
	}
	inW := len(src[0])
	if inW == outW && inH == outH {
		return src
	}

	out := make([][]float64, outH)
	for y := 0; y < outH; y++ {
		fy := (float64(y)+0.5)*float64(inH)/float64(outH) - 0.5
		y0 := int(math.Floor(fy))
		wy := fy - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0, y1, wy = 0, 0, 0
		}
		if y1 >= inH {
			y1 = inH - 1
			if y0 > y1 {
				y0 = y1
			}
		}
		row := make([]float64, outW)
		for x := 0; x < outW; x++ {
			fx := (float64(x)+0.5)*float64(inW)/float64(outW) - 0.5
			x0 := int(math.Floor(fx))
			wx := fx - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0, x1, wx = 0, 0, 0
			}
			if x1 >= inW {
				x1 = inW - 1
				if x0 > x1 {
					x0 = x1
				}
			}
			top := src[y0][x0]*(1-wx) + src[y0][x1]*wx
			bot := src[y1][x0]*(1-wx) + src[y1][x1]*wx
			row[x] = top*(1-wy) + bot*wy
		}
		out[y] = row
	}
	return out
}

// needsColorTransform reports whether the first three output channels carry
// a luma/chroma representation that must be inverted: either the codestream
// said so (MCT) or the container declared an sYCC color space. The count is
// of channels after palette expansion and remapping, not of codestream
// components, so a palette image expanding to three channels qualifies.
func (d *Decoder) needsColorTransform() bool {
	return d.numOut >= 3 && (d.params.MCT || d.params.ColorSpace == ColorSpaceSYCC)
}

// useRCT selects the reversible transform: only when the wavelet path is
// reversible and the data is not sYCC (sYCC is defined against the
// irreversible transform).
func (d *Decoder) useRCT() bool {
	return d.params.Wavelet == Wavelet53 && d.params.ColorSpace != ColorSpaceSYCC
}

func planesToInt32(p [][]float64) [][]int32 {
	out := make([][]int32, len(p))
	for y, row := range p {
		r := make([]int32, len(row))
		for x, v := range row {
			r[x] = int32(math.Floor(v + 0.5))
		}
		out[y] = r
	}
	return out
}

func planesToFloat64(p [][]int32) [][]float64 {
	out := make([][]float64, len(p))
	for y, row := range p {
		r := make([]float64, len(row))
		for x, v := range row {
			r[x] = float64(v)
		}
		out[y] = r
	}
	return out
}

// applyPalette maps one plane of palette indices onto a palette column.
// Index samples are centered (the DC shift has not been undone yet), so
// the component's half-range comes back on before the lookup; the entry
// goes out re-centered against the column's own half-range so the final
// level shift lands it in the column's unsigned range.
func applyPalette(src [][]float64, pal *Palette, col int, compPrec int, compSigned bool) [][]float64 {
	idxOffset := 0
	if !compSigned {
		idxOffset = 1 << uint(compPrec-1)
	}
	entryOffset := float64(int(1) << uint(pal.BitDepths[col]-1))

	out := make([][]float64, len(src))
	for y, row := range src {
		r := make([]float64, len(row))
		for x, v := range row {
			idx := int(math.Floor(v+0.5)) + idxOffset
			if idx < 0 {
				idx = 0
			}
			if idx >= pal.NumEntries {
				idx = pal.NumEntries - 1
			}
			r[x] = float64(pal.Entries[idx][col]) - entryOffset
		}
		out[y] = r
	}
	return out
}

// channelOrder derives the output ordering from the channel definitions:
// a color channel (type 0) associated with R/Y=1, G/Cb=2, B/Cr=3 moves to
// that slot. Channels without a definition keep their position.
func (d *Decoder) channelOrder() []int {
	order := make([]int, d.numOut)
	for i := range order {
		order[i] = i
	}
	for _, def := range d.params.ChannelDefs {
		if def.Type != 0 {
			continue
		}
		if def.Association < 1 || def.Association > d.numOut {
			continue
		}
		if def.Channel < 0 || def.Channel >= d.numOut {
			continue
		}
		order[def.Association-1] = def.Channel
	}
	return order
}

// renderTile converts one tile's synthesized component planes into output
// bytes at the tile's offset in the image buffer. Component planes arrive
// at their (possibly subsampled) dimensions and are upsampled to the tile
// grid first.
func (d *Decoder) renderTile(rec *ReconstructedTile) {
	planes := rec.Floats
	if rec.Ints != nil {
		// Reversible samples are exact in float64.
		planes = make([][][]float64, len(rec.Ints))
		for i, grid := range rec.Ints {
			planes[i] = planesToFloat64(grid)
		}
	}
	for i := range planes {
		planes[i] = upsampleBilinear(planes[i], rec.Width, rec.Height)
	}

	// Resolve each output channel to its sample plane and range, then
	// reorder into output-slot order. The color transform runs on the
	// remapped channels, so palette expansion and cdef reordering come
	// first.
	chans := make([][][]float64, d.numOut)
	for k, ch := range d.channels {
		src := planes[ch.comp]
		if ch.palCol >= 0 {
			comp := d.params.Components[ch.comp]
			src = applyPalette(src, d.params.Palette, ch.palCol, comp.Precision, comp.Signed)
		}
		chans[k] = src
	}

	order := d.channelOrder()
	slots := make([][][]float64, d.numOut)
	ranges := make([]outChannel, d.numOut)
	for slot, k := range order {
		slots[slot] = chans[k]
		ranges[slot] = d.channels[k]
	}

	if d.needsColorTransform() {
		if d.useRCT() {
			y := planesToInt32(slots[0])
			cb := planesToInt32(slots[1])
			cr := planesToInt32(slots[2])
			r, g, b := applyInverseRCT(y, cb, cr)
			slots[0] = planesToFloat64(r)
			slots[1] = planesToFloat64(g)
			slots[2] = planesToFloat64(b)
		} else {
			slots[0], slots[1], slots[2] = applyInverseICT(slots[0], slots[1], slots[2])
		}
	}

	for y := 0; y < rec.Height; y++ {
		rowBase := ((rec.Y0 + y) * d.params.Width) + rec.X0
		for x := 0; x < rec.Width; x++ {
			base := (rowBase + x) * d.numOut
			for slot := 0; slot < d.numOut; slot++ {
				ch := ranges[slot]
				// Level shift back to the unsigned range; signed
				// channels get the same offset as a display mapping.
				v := int32(math.Floor(slots[slot][y][x]+0.5)) + int32(1)<<uint(ch.precision-1)
				maxVal := int32(1)<<uint(ch.precision) - 1
				if v < 0 {
					v = 0
				}
				if v > maxVal {
					v = maxVal
				}
				if ch.precision > 8 {
					v >>= uint(ch.precision - 8)
				}
				d.pix[base+slot] = uint8(v)
			}
		}
	}
}
