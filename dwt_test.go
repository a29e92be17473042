package jpx

import (
	"errors"
	"math"
	"testing"
)

func TestSynthesize1D53Known(t *testing.T) {
	// Packed input: low [10 12 14 16], high [1 -2 3 -1]. Worked by hand
	// from the 5/3 inverse lifting equations (T.800 F.3.8.2).
	data := []int32{10, 12, 14, 16, 1, -2, 3, -1}
	low := make([]int32, 4)
	high := make([]int32, 4)
	synthesize1D53(data, low, high, 0)

	want := []int32{9, 11, 12, 11, 14, 17, 15, 14}
	for i, w := range want {
		if data[i] != w {
			t.Errorf("Sample %d: expected %d, got %d", i, w, data[i])
		}
	}
}

func TestSynthesize1DLength1(t *testing.T) {
	d53 := []int32{5}
	synthesize1D53(d53, make([]int32, 1), make([]int32, 1), 0)
	if d53[0] != 5 {
		t.Errorf("5/3 length-1: expected 5, got %d", d53[0])
	}

	d97 := []float64{5}
	synthesize1D97(d97, make([]float64, 1), make([]float64, 1), 0)
	if d97[0] != 5 {
		t.Errorf("9/7 length-1: expected 5, got %g", d97[0])
	}
}

func zeroGridInt(w, h int) [][]int32 {
	g := make([][]int32, h)
	for y := range g {
		g[y] = make([]int32, w)
	}
	return g
}

func zeroGridFloat(w, h int) [][]float64 {
	g := make([][]float64, h)
	for y := range g {
		g[y] = make([]float64, w)
	}
	return g
}

func zeroBandsInt(w, h, levels int) *DwtCoefficients {
	c := &DwtCoefficients{Levels: levels}
	llW, llH := subbandDims(w, h, levels, SubbandLL, 0)
	c.Bands = append(c.Bands, &SubbandGrid{Type: SubbandLL, Width: llW, Height: llH, Ints: zeroGridInt(llW, llH)})
	for level := 1; level <= levels; level++ {
		for _, ty := range []SubbandType{SubbandHL, SubbandLH, SubbandHH} {
			bw, bh := subbandDims(w, h, levels, ty, level)
			c.Bands = append(c.Bands, &SubbandGrid{Type: ty, Width: bw, Height: bh, Ints: zeroGridInt(bw, bh)})
		}
	}
	return c
}

func zeroBandsFloat(w, h, levels int) *DwtCoefficients {
	c := &DwtCoefficients{Levels: levels}
	llW, llH := subbandDims(w, h, levels, SubbandLL, 0)
	c.Bands = append(c.Bands, &SubbandGrid{Type: SubbandLL, Width: llW, Height: llH, Floats: zeroGridFloat(llW, llH)})
	for level := 1; level <= levels; level++ {
		for _, ty := range []SubbandType{SubbandHL, SubbandLH, SubbandHH} {
			bw, bh := subbandDims(w, h, levels, ty, level)
			c.Bands = append(c.Bands, &SubbandGrid{Type: ty, Width: bw, Height: bh, Floats: zeroGridFloat(bw, bh)})
		}
	}
	return c
}

// TestSynthesizeIntsConstant: a constant LL band with zero detail bands
// reconstructs a constant image under the 5/3 filter, at odd and even
// dimensions.
func TestSynthesizeIntsConstant(t *testing.T) {
	tests := []struct {
		w, h, levels int
	}{
		{w: 8, h: 8, levels: 1},
		{w: 7, h: 5, levels: 2},
		{w: 13, h: 9, levels: 3},
		{w: 4, h: 4, levels: 0},
	}
	for _, tt := range tests {
		c := zeroBandsInt(tt.w, tt.h, tt.levels)
		const fill = int32(37)
		for y := range c.Bands[0].Ints {
			for x := range c.Bands[0].Ints[y] {
				c.Bands[0].Ints[y][x] = fill
			}
		}
		grid, err := synthesizeInts(c)
		if err != nil {
			t.Fatalf("%dx%d levels=%d: %v", tt.w, tt.h, tt.levels, err)
		}
		if len(grid) != tt.h || len(grid[0]) != tt.w {
			t.Fatalf("%dx%d levels=%d: got %dx%d grid", tt.w, tt.h, tt.levels, len(grid[0]), len(grid))
		}
		for y := range grid {
			for x := range grid[y] {
				if grid[y][x] != fill {
					t.Fatalf("%dx%d levels=%d: (%d,%d) = %d, want %d",
						tt.w, tt.h, tt.levels, x, y, grid[y][x], fill)
				}
			}
		}
	}
}

// TestSynthesizeFloatsConstant: the 9/7 low-pass branch has unit DC gain,
// so a constant LL band with zero details reconstructs the same constant.
func TestSynthesizeFloatsConstant(t *testing.T) {
	c := zeroBandsFloat(8, 8, 1)
	const fill = 100.0
	for y := range c.Bands[0].Floats {
		for x := range c.Bands[0].Floats[y] {
			c.Bands[0].Floats[y][x] = fill
		}
	}
	grid, err := synthesizeFloats(c)
	if err != nil {
		t.Fatal(err)
	}
	for y := range grid {
		for x := range grid[y] {
			if math.Abs(grid[y][x]-fill) > 1e-6 {
				t.Fatalf("(%d,%d) = %g, want %g", x, y, grid[y][x], fill)
			}
		}
	}
}

func TestSynthesizeBandCountMismatch(t *testing.T) {
	c := zeroBandsInt(8, 8, 2)
	c.Bands = c.Bands[:4]
	if _, err := synthesizeInts(c); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}
}

// TestSynthesizeIntsImpulse checks a known non-trivial reconstruction: a
// single LL coefficient at one level spreads through the inverse 5/3
// lifting in both directions.
func TestSynthesizeIntsImpulse(t *testing.T) {
	c := zeroBandsInt(4, 1, 1)
	// LL = [8 0], HL = [0 0]: one row, so only the horizontal pass acts.
	c.Bands[0].Ints[0][0] = 8
	grid, err := synthesizeInts(c)
	if err != nil {
		t.Fatal(err)
	}
	// Packed [8 0 0 0]: evens are 8,0 (no high-pass correction); odds are
	// floor((left+right)/2): 4 and 0.
	want := []int32{8, 4, 0, 0}
	for x, w := range want {
		if grid[0][x] != w {
			t.Errorf("Sample %d: expected %d, got %d", x, w, grid[0][x])
		}
	}
}
