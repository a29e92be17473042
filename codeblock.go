package jpx

import "fmt"

// EBCOT tier-1 code-block decoding per ITU-T T.800 Annex D: three coding
// passes per bit-plane (significance propagation, magnitude refinement,
// cleanup) over 4-row stripes, driven by the MQ decoder.
//
// State is kept in flat strided arrays with a one-sample border on every
// side so the 3x3 neighborhood reads never need bounds checks. Magnitudes
// are anchored at bit 30: the first decoded bit-plane for a block with z
// missing bit-planes is 30-z, and a coefficient that becomes significant at
// plane bp is seeded with the reconstruction midpoint of that plane.

const maxCodeBlockDim = 1024

// Per-coefficient state flags.
const (
	flagSignificant uint8 = 1 << iota
	flagNeighborSig       // At least one of the 8 neighbors is significant
	flagRefined           // Has been through a refinement pass
	flagVisited           // Coded in the current bit-plane already
	flagNegative
)

type passKind int

const (
	passSigProp passKind = iota
	passMagRef
	passCleanup
)

type blockDecoder struct {
	width, height int
	stride        int

	// Bordered grids: index (y+1)*stride + (x+1).
	flags []uint8
	mag   []uint32

	sigCtx *[45]uint8

	mq *mqDecoder
}

// decodeCodeBlock decodes one code-block bitstream into a signed
// coefficient grid of the block's dimensions. A truncated stream decodes
// the passes that fit; zero coding passes yield an all-zero grid.
func decodeCodeBlock(cb *CodeBlockBitstream, band SubbandType) ([][]int32, error) {
	if cb.Width < 1 || cb.Height < 1 || cb.Width > maxCodeBlockDim || cb.Height > maxCodeBlockDim {
		return nil, fmt.Errorf("%w: code-block %dx%d", ErrInvalidGeometry, cb.Width, cb.Height)
	}
	if cb.ZeroBitPlanes < 0 || cb.NumPasses < 0 {
		return nil, fmt.Errorf("%w: %d zero bit-planes, %d passes", ErrInvalidGeometry, cb.ZeroBitPlanes, cb.NumPasses)
	}
	if bad := cb.Style & (StyleBypass | StyleTerminateAll | StyleVertCausal | StyleSegmentSymbol); bad != 0 {
		return nil, fmt.Errorf("%w: style flags 0x%02x", ErrUnsupportedCodingStyle, bad)
	}

	d := &blockDecoder{
		width:  cb.Width,
		height: cb.Height,
		stride: cb.Width + 2,
		sigCtx: sigCtxTable(band),
	}
	d.flags = make([]uint8, d.stride*(cb.Height+2))
	d.mag = make([]uint32, d.stride*(cb.Height+2))

	bp := 30 - cb.ZeroBitPlanes
	if cb.NumPasses > 0 && bp >= 0 {
		d.mq = newMQDecoder(cb.Data)
		d.runPasses(cb, bp)
	}
	return d.extract(), nil
}

// runPasses executes the coding passes in standard order: one cleanup pass
// on the first bit-plane, then significance propagation, refinement and
// cleanup on each subsequent plane. Decoding stops early when the stream
// runs into a terminating marker or the plane index bottoms out.
func (d *blockDecoder) runPasses(cb *CodeBlockBitstream, bp int) {
	kind := passCleanup
	for pass := 0; pass < cb.NumPasses; pass++ {
		switch kind {
		case passSigProp:
			d.sigPropPass(bp)
		case passMagRef:
			d.magRefPass(bp)
		case passCleanup:
			d.cleanupPass(bp)
		}
		if d.mq.MarkerFound() {
			break
		}
		if cb.Style&StyleResetContext != 0 {
			d.mq.resetContexts()
		}
		switch kind {
		case passCleanup:
			if bp == 0 {
				return
			}
			bp--
			kind = passSigProp
		case passSigProp:
			kind = passMagRef
		case passMagRef:
			kind = passCleanup
		}
	}
}

// sigPropPass codes, in stripe order, every insignificant coefficient that
// has at least one significant neighbor (D.3.1).
func (d *blockDecoder) sigPropPass(bp int) {
	for y0 := 0; y0 < d.height; y0 += 4 {
		yMax := y0 + 4
		if yMax > d.height {
			yMax = d.height
		}
		for x := 0; x < d.width; x++ {
			for y := y0; y < yMax; y++ {
				pos := (y+1)*d.stride + (x + 1)
				f := d.flags[pos]
				if f&flagSignificant != 0 || f&flagNeighborSig == 0 {
					continue
				}
				d.flags[pos] |= flagVisited
				if d.mq.Decode(d.sigContext(pos)) != 0 {
					d.setSignificant(pos, bp)
					d.decodeSign(pos)
				}
			}
		}
	}
}

// magRefPass refines every coefficient that was already significant before
// this bit-plane (D.3.2): one decoded bit replaces bit bp of the magnitude
// and the reconstruction point is re-centered half a step below it.
func (d *blockDecoder) magRefPass(bp int) {
	for y0 := 0; y0 < d.height; y0 += 4 {
		yMax := y0 + 4
		if yMax > d.height {
			yMax = d.height
		}
		for x := 0; x < d.width; x++ {
			for y := y0; y < yMax; y++ {
				pos := (y+1)*d.stride + (x + 1)
				f := d.flags[pos]
				if f&flagSignificant == 0 || f&flagVisited != 0 {
					continue
				}
				ctx := ctxMagFirst
				if f&flagRefined != 0 {
					ctx = ctxMagRepeat
				} else if f&flagNeighborSig != 0 {
					ctx = ctxMagNeighbor
				}
				bit := d.mq.Decode(ctx)
				mask := uint32(1)<<(uint(bp)+1) - 1
				d.mag[pos] = d.mag[pos]&^mask |
					uint32(bit)<<uint(bp) |
					uint32(1)<<uint(bp)>>1
				d.flags[pos] |= flagRefined
			}
		}
	}
}

// cleanupPass codes everything the other two passes skipped (D.3.4). A full
// 4-row stripe column whose coefficients all carry zero state is handled in
// run mode: one run-length bit, and on a hit two uniform bits give the row
// of the first new significant coefficient. The visited marks accumulated
// over the plane's passes are cleared on the way out.
func (d *blockDecoder) cleanupPass(bp int) {
	for y0 := 0; y0 < d.height; y0 += 4 {
		yMax := y0 + 4
		if yMax > d.height {
			yMax = d.height
		}
		for x := 0; x < d.width; x++ {
			y := y0
			if yMax-y0 == 4 && d.stripeAllClear(x, y0) {
				if d.mq.Decode(ctxRunLength) == 0 {
					for ; y < yMax; y++ {
						d.flags[(y+1)*d.stride+(x+1)] |= flagVisited
					}
					continue
				}
				r := d.mq.Decode(ctxUniform)<<1 | d.mq.Decode(ctxUniform)
				for ; y < y0+r; y++ {
					d.flags[(y+1)*d.stride+(x+1)] |= flagVisited
				}
				pos := (y+1)*d.stride + (x + 1)
				d.flags[pos] |= flagVisited
				d.setSignificant(pos, bp)
				d.decodeSign(pos)
				y++
			}
			for ; y < yMax; y++ {
				d.cleanupOne((y+1)*d.stride+(x+1), bp)
			}
		}
	}
	for i := range d.flags {
		d.flags[i] &^= flagVisited
	}
}

// stripeAllClear reports whether the four stripe coefficients at column x
// all carry zero coding state, making the column eligible for run mode.
func (d *blockDecoder) stripeAllClear(x, y0 int) bool {
	for y := y0; y < y0+4; y++ {
		if d.flags[(y+1)*d.stride+(x+1)] != 0 {
			return false
		}
	}
	return true
}

func (d *blockDecoder) cleanupOne(pos, bp int) {
	f := d.flags[pos]
	if f&(flagSignificant|flagVisited) != 0 {
		return
	}
	d.flags[pos] |= flagVisited
	if d.mq.Decode(d.sigContext(pos)) != 0 {
		d.setSignificant(pos, bp)
		d.decodeSign(pos)
	}
}

// sigContext computes the significance context from the neighbor counts.
func (d *blockDecoder) sigContext(pos int) int {
	h := int(d.flags[pos-1]&flagSignificant) + int(d.flags[pos+1]&flagSignificant)
	v := int(d.flags[pos-d.stride]&flagSignificant) + int(d.flags[pos+d.stride]&flagSignificant)
	dd := int(d.flags[pos-d.stride-1]&flagSignificant) +
		int(d.flags[pos-d.stride+1]&flagSignificant) +
		int(d.flags[pos+d.stride-1]&flagSignificant) +
		int(d.flags[pos+d.stride+1]&flagSignificant)
	return int(d.sigCtx[(h*3+v)*5+dd])
}

// signContribution returns -1, 0 or +1 for one neighbor.
func (d *blockDecoder) signContribution(pos int) int {
	f := d.flags[pos]
	if f&flagSignificant == 0 {
		return 0
	}
	if f&flagNegative != 0 {
		return -1
	}
	return 1
}

// decodeSign decodes the sign of a coefficient that just became
// significant, using the neighbor-driven context and XOR of Table D.6.
func (d *blockDecoder) decodeSign(pos int) {
	h := d.signContribution(pos-1) + d.signContribution(pos+1)
	if h < -1 {
		h = -1
	} else if h > 1 {
		h = 1
	}
	v := d.signContribution(pos-d.stride) + d.signContribution(pos+d.stride)
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	bit := d.mq.Decode(int(signCtx[h+1][v+1])) ^ int(signFlip[h+1][v+1])
	if bit != 0 {
		d.flags[pos] |= flagNegative
	}
}

// setSignificant marks the coefficient significant, seeds its magnitude at
// the bit-plane midpoint and propagates the neighbor flag to all eight
// neighbors. The border rows absorb propagation at the edges.
func (d *blockDecoder) setSignificant(pos, bp int) {
	d.flags[pos] |= flagSignificant
	d.mag[pos] = uint32(3) << uint(bp) >> 1
	for _, n := range [8]int{
		pos - d.stride - 1, pos - d.stride, pos - d.stride + 1,
		pos - 1, pos + 1,
		pos + d.stride - 1, pos + d.stride, pos + d.stride + 1,
	} {
		d.flags[n] |= flagNeighborSig
	}
}

// extract converts the magnitude/sign state to a signed coefficient grid.
func (d *blockDecoder) extract() [][]int32 {
	out := make([][]int32, d.height)
	for y := 0; y < d.height; y++ {
		row := make([]int32, d.width)
		base := (y + 1) * d.stride
		for x := 0; x < d.width; x++ {
			pos := base + x + 1
			v := int32(d.mag[pos])
			if d.flags[pos]&flagNegative != 0 {
				v = -v
			}
			row[x] = v
		}
		out[y] = row
	}
	return out
}
