package jpx

// MQ arithmetic decoder for EBCOT tier-1 coding passes.
//
// This is the context-adaptive binary arithmetic decoder of ITU-T T.800
// Annex C, implemented in the "software convention" form of ITU-T T.88
// Annex G: the code register holds the complement of the stream bytes, so
// byte-in adds 0xFF00 minus the incoming byte and the interval comparison
// tests the high half of C directly against A.
//
// The decoder maintains:
//   - a: probability interval (16-bit, renormalized to >= 0x8000)
//   - c: code register (complemented stream bits)
//   - ct: bits available before the next byte-in
//   - contexts: 19 probability states, one per coding context
//
// Reading past the end of the input yields the stationary fill value 0xFF;
// a 0xFF byte followed by a value > 0x8F is a marker and sets markerFound,
// after which all further byte-ins consume padding. Truncation is never an
// error at this layer; callers observe MarkerFound.

// Coding context numbering. Significance contexts occupy 2..10 and sign
// contexts 11..15; see contexts.go for the neighborhood lookup tables.
const (
	ctxUniform     = 0  // Uniform probability (run lengths, pinned to state 46)
	ctxRunLength   = 1  // Run-length aggregate bit (starts at state 3)
	ctxSigFirst    = 2  // First significance context (starts at state 4)
	ctxMagFirst    = 16 // First refinement, no significant neighbor
	ctxMagNeighbor = 17 // First refinement with a significant neighbor
	ctxMagRepeat   = 18 // Second and later refinements

	numContexts = 19
)

type mqContext struct {
	index int // Index into the probability table (0-46)
	mps   int // Most probable symbol (0 or 1)
}

// mqProbEntry is one entry of the probability estimation state machine.
type mqProbEntry struct {
	qe        uint16 // Probability estimate value
	nmps      int    // Next state after an MPS
	nlps      int    // Next state after an LPS
	switchMPS bool   // Whether the MPS sense flips on an LPS
}

// MQ probability table per ITU-T T.800 Table C.2 / T.88 Table E.1.
var mqProbTable = [47]mqProbEntry{
	{0x5601, 1, 1, true},    // 0
	{0x3401, 2, 6, false},   // 1
	{0x1801, 3, 9, false},   // 2
	{0x0AC1, 4, 12, false},  // 3
	{0x0521, 5, 29, false},  // 4
	{0x0221, 38, 33, false}, // 5
	{0x5601, 7, 6, true},    // 6
	{0x5401, 8, 14, false},  // 7
	{0x4801, 9, 14, false},  // 8
	{0x3801, 10, 14, false}, // 9
	{0x3001, 11, 17, false}, // 10
	{0x2401, 12, 18, false}, // 11
	{0x1C01, 13, 20, false}, // 12
	{0x1601, 29, 21, false}, // 13
	{0x5601, 15, 14, true},  // 14
	{0x5401, 16, 14, false}, // 15
	{0x5101, 17, 15, false}, // 16
	{0x4801, 18, 16, false}, // 17
	{0x3801, 19, 17, false}, // 18
	{0x3401, 20, 18, false}, // 19
	{0x3001, 21, 19, false}, // 20
	{0x2801, 22, 19, false}, // 21
	{0x2401, 23, 20, false}, // 22
	{0x2201, 24, 21, false}, // 23
	{0x1C01, 25, 22, false}, // 24
	{0x1801, 26, 23, false}, // 25
	{0x1601, 27, 24, false}, // 26
	{0x1401, 28, 25, false}, // 27
	{0x1201, 29, 26, false}, // 28
	{0x1101, 30, 27, false}, // 29
	{0x0AC1, 31, 28, false}, // 30
	{0x09C1, 32, 29, false}, // 31
	{0x08A1, 33, 30, false}, // 32
	{0x0521, 34, 31, false}, // 33
	{0x0441, 35, 32, false}, // 34
	{0x02A1, 36, 33, false}, // 35
	{0x0221, 37, 34, false}, // 36
	{0x0141, 38, 35, false}, // 37
	{0x0111, 39, 36, false}, // 38
	{0x0085, 40, 37, false}, // 39
	{0x0049, 41, 38, false}, // 40
	{0x0025, 42, 39, false}, // 41
	{0x0015, 43, 40, false}, // 42
	{0x0009, 44, 41, false}, // 43
	{0x0005, 45, 42, false}, // 44
	{0x0001, 45, 43, false}, // 45
	{0x5601, 46, 46, false}, // 46 (uniform)
}

// mqDecoder decodes one bit per call over a fixed byte sequence. It is
// constructed fresh for every code-block; per-block state never leaks
// between decodes.
type mqDecoder struct {
	data []byte
	pos  int // Index of the byte currently feeding the code register

	a  uint32
	c  uint32
	ct int

	markerFound bool

	// Raw (bypass) reader state. Raw bits share the byte-stuffing rules
	// but read from their own position with no probability adaptation.
	rawC   uint32
	rawCT  int
	rawPos int

	contexts [numContexts]mqContext
}

// newMQDecoder constructs a decoder over data and primes the code register.
// The INITDEC of T.88 G.1: read the first byte complemented into the high
// bits of C, pull in the next byte, then shift up by 7.
func newMQDecoder(data []byte) *mqDecoder {
	d := &mqDecoder{data: data}
	d.resetContexts()
	d.c = uint32(d.byteAt(0)^0xFF) << 16
	d.bytein()
	d.c <<= 7
	d.ct -= 7
	if d.ct < 0 {
		d.ct = 0
	}
	d.a = 0x8000
	return d
}

// byteAt returns the byte at index i, or the stationary fill value 0xFF
// once the input is exhausted.
func (d *mqDecoder) byteAt(i int) byte {
	if i < len(d.data) {
		return d.data[i]
	}
	return 0xFF
}

// MarkerFound reports whether a terminating marker (0xFF followed by a
// value > 0x8F) or the end of the input has been reached. Decoding remains
// well-defined afterwards; the decoder consumes padding.
func (d *mqDecoder) MarkerFound() bool {
	return d.markerFound
}

// Decode decodes one bit using the given context.
func (d *mqDecoder) Decode(ctx int) int {
	if ctx < 0 || ctx >= numContexts {
		return 0
	}
	cx := &d.contexts[ctx]
	entry := &mqProbTable[cx.index]
	qe := uint32(entry.qe)

	d.a -= qe

	if (d.c >> 16) < d.a {
		// MPS sub-interval.
		if d.a&0x8000 != 0 {
			// Fast path: no renormalization, no context update.
			return cx.mps
		}
		var bit int
		if d.a < qe {
			// Conditional exchange: the smaller sub-interval is the MPS.
			bit = 1 - cx.mps
			if entry.switchMPS {
				cx.mps = 1 - cx.mps
			}
			cx.index = entry.nlps
		} else {
			bit = cx.mps
			cx.index = entry.nmps
		}
		d.renormalize()
		return bit
	}

	// LPS sub-interval.
	d.c -= d.a << 16
	var bit int
	if d.a < qe {
		bit = cx.mps
		cx.index = entry.nmps
	} else {
		bit = 1 - cx.mps
		if entry.switchMPS {
			cx.mps = 1 - cx.mps
		}
		cx.index = entry.nlps
	}
	d.a = qe
	d.renormalize()
	return bit
}

// DecodeRaw decodes one bypass-mode bit: MSB-first raw bits with the same
// 0xFF stuffing rules as the arithmetic stream (7 data bits follow a 0xFF;
// a marker or end-of-data pins the reader to 0xFF fill), but no probability
// update.
func (d *mqDecoder) DecodeRaw() int {
	if d.rawCT == 0 {
		if d.rawC == 0xFF {
			next := d.byteAt(d.rawPos)
			if next > 0x8F {
				// Marker or end-of-data: stay on 0xFF fill.
				d.rawC = 0xFF
				d.rawCT = 8
				d.markerFound = true
			} else {
				d.rawC = uint32(next)
				d.rawPos++
				d.rawCT = 7
			}
		} else {
			d.rawC = uint32(d.byteAt(d.rawPos))
			d.rawPos++
			d.rawCT = 8
		}
	}
	d.rawCT--
	return int((d.rawC >> d.rawCT) & 1)
}

// renormalize doubles the interval and code registers until the interval is
// back above 0x8000, pulling in new bytes as the bit budget drains.
func (d *mqDecoder) renormalize() {
	for {
		if d.ct == 0 {
			d.bytein()
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
		if d.a&0x8000 != 0 {
			return
		}
	}
}

// bytein feeds the next byte into the code register (BYTEIN, T.88 G.1.2).
// In the software convention the register holds complemented data, so a
// normal byte contributes 0xFF00 - (b << 8); a stuffed byte after 0xFF
// carries only 7 bits and contributes 0xFE00 - (b << 9). When the current
// byte is 0xFF and the next exceeds 0x8F, a marker has been reached: the
// position stays put and the register absorbs pure padding (a zero
// contribution here, since the fill byte is 0xFF).
func (d *mqDecoder) bytein() {
	if d.byteAt(d.pos) == 0xFF {
		if d.byteAt(d.pos+1) > 0x8F {
			d.markerFound = true
			d.ct = 8
			return
		}
		d.pos++
		d.c += 0xFE00 - uint32(d.byteAt(d.pos))<<9
		d.ct = 7
		return
	}
	d.pos++
	d.c += 0xFF00 - uint32(d.byteAt(d.pos))<<8
	d.ct = 8
}

// resetContexts restores all contexts to their initial states: the uniform
// context is pinned to the near-uniform final table entry, the run-length
// context starts at state 3, the first significance context at state 4, and
// everything else at state 0 with MPS 0.
func (d *mqDecoder) resetContexts() {
	for i := range d.contexts {
		d.contexts[i] = mqContext{}
	}
	d.contexts[ctxUniform].index = 46
	d.contexts[ctxRunLength].index = 3
	d.contexts[ctxSigFirst].index = 4
}
