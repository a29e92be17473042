package jpx

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tier-1 orchestration: walk a tile-component's subbands, decode every
// code-block and assemble the per-subband coefficient grids. Blocks within
// a subband are independent, so the per-block work optionally fans out
// across a bounded worker group.

// subbandDims returns the coefficient-grid dimensions of one subband for a
// tile-component of the given size. Dimensions follow the recursive
// halving of the decomposition: the level-r low-pass grid is the parent
// grid split with ceil on the low side.
func subbandDims(w, h, levels int, band SubbandType, level int) (int, int) {
	ceilShift := func(n, s int) int {
		return (n + 1<<uint(s) - 1) >> uint(s)
	}
	if band == SubbandLL {
		return ceilShift(w, levels), ceilShift(h, levels)
	}
	// Detail band at level r sits one halving below the level-r grid.
	depth := levels - level + 1
	pw := ceilShift(w, depth-1)
	ph := ceilShift(h, depth-1)
	lw := (pw + 1) / 2
	lh := (ph + 1) / 2
	switch band {
	case SubbandHL:
		return pw - lw, lh
	case SubbandLH:
		return lw, ph - lh
	}
	return pw - lw, ph - lh
}

// subbandLevel maps a subband's index in the tier-2 ordering (LL first,
// then HL/LH/HH per level, coarsest to finest) to its resolution level.
func subbandLevel(index int) int {
	if index == 0 {
		return 0
	}
	return (index-1)/3 + 1
}

// subbandStep resolves the quantization step for a subband. Expounded
// signalling carries one step per subband in band order; derived carries a
// single step for the LL band from which finer bands derive by exponent
// adjustment. A missing entry degrades to a zero step.
func subbandStep(q SubbandQuant, index, level int) StepSize {
	switch q.Style {
	case QuantDerived:
		if len(q.Steps) == 0 {
			return StepSize{}
		}
		s := q.Steps[0]
		if level > 0 {
			s.Exponent += 1 - level
		}
		return s
	default:
		// Expounded (and reversible) signalling carries one entry per
		// subband in band order.
		if index >= len(q.Steps) {
			return StepSize{}
		}
		return q.Steps[index]
	}
}

// subbandMb returns the number of magnitude bit-planes the subband
// nominally carries: guard bits plus the step exponent, less one.
func subbandMb(q SubbandQuant, step StepSize) int {
	mb := q.GuardBits + step.Exponent - 1
	if mb > 31 {
		mb = 31
	}
	return mb
}

// decodeTileComponent runs tier-1 over one tile-component of size w x h and
// returns its quantized subbands in band order. workers bounds the number
// of code-blocks decoded concurrently; values <= 1 decode sequentially.
func decodeTileComponent(tc *TileComponentInput, w, h, workers int) ([]*QuantizedSubband, error) {
	if tc.Levels < 0 || len(tc.Subbands) != 1+3*tc.Levels {
		return nil, fmt.Errorf("%w: %d subbands for %d levels", ErrInvalidGeometry, len(tc.Subbands), tc.Levels)
	}
	if !validCodeBlockDim(tc.CodeBlockWidth) || !validCodeBlockDim(tc.CodeBlockHeight) {
		return nil, fmt.Errorf("%w: nominal code-block %dx%d", ErrInvalidGeometry, tc.CodeBlockWidth, tc.CodeBlockHeight)
	}

	out := make([]*QuantizedSubband, len(tc.Subbands))
	for i, sb := range tc.Subbands {
		level := subbandLevel(i)
		bw, bh := subbandDims(w, h, tc.Levels, sb.Type, level)
		step := subbandStep(tc.Quant, i, level)
		q := &QuantizedSubband{
			Type:   sb.Type,
			Level:  level,
			Width:  bw,
			Height: bh,
			Step:   step,
			Mb:     subbandMb(tc.Quant, step),
		}
		q.Coeffs = make([][]int32, bh)
		for y := range q.Coeffs {
			q.Coeffs[y] = make([]int32, bw)
		}
		out[i] = q

		if q.Mb <= 0 {
			// Nothing to decode into; the grid stays zero.
			continue
		}
		if err := decodeSubbandBlocks(sb, q, tc.CodeBlockWidth, tc.CodeBlockHeight, workers); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func validCodeBlockDim(n int) bool {
	return n >= 4 && n <= maxCodeBlockDim && n&(n-1) == 0
}

// decodeSubbandBlocks decodes every code-block of one subband and copies
// the results into the subband grid at the block's grid position, clipped
// to the subband bounds.
func decodeSubbandBlocks(sb *SubbandInput, q *QuantizedSubband, cbW, cbH, workers int) error {
	place := func(cb *CodeBlockBitstream) error {
		coeffs, err := decodeCodeBlock(cb, q.Type)
		if err != nil {
			return fmt.Errorf("subband %s block (%d,%d): %w", q.Type, cb.X, cb.Y, err)
		}
		x0 := cb.X * cbW
		y0 := cb.Y * cbH
		for y := 0; y < cb.Height; y++ {
			dy := y0 + y
			if dy < 0 || dy >= q.Height {
				continue
			}
			for x := 0; x < cb.Width; x++ {
				dx := x0 + x
				if dx < 0 || dx >= q.Width {
					continue
				}
				q.Coeffs[dy][dx] = coeffs[y][x]
			}
		}
		return nil
	}

	if workers <= 1 || len(sb.CodeBlocks) < 2 {
		for _, cb := range sb.CodeBlocks {
			if err := place(cb); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, cb := range sb.CodeBlocks {
		g.Go(func() error { return place(cb) })
	}
	return g.Wait()
}
