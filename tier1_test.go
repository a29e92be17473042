package jpx

import (
	"errors"
	"testing"
)

func TestSubbandDims(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		levels int
		band   SubbandType
		level  int
		wantW  int
		wantH  int
	}{
		{name: "LL one level", w: 7, h: 5, levels: 1, band: SubbandLL, level: 0, wantW: 4, wantH: 3},
		{name: "HL one level", w: 7, h: 5, levels: 1, band: SubbandHL, level: 1, wantW: 3, wantH: 3},
		{name: "LH one level", w: 7, h: 5, levels: 1, band: SubbandLH, level: 1, wantW: 4, wantH: 2},
		{name: "HH one level", w: 7, h: 5, levels: 1, band: SubbandHH, level: 1, wantW: 3, wantH: 2},
		{name: "LL two levels", w: 7, h: 5, levels: 2, band: SubbandLL, level: 0, wantW: 2, wantH: 2},
		{name: "HL coarse", w: 7, h: 5, levels: 2, band: SubbandHL, level: 1, wantW: 2, wantH: 2},
		{name: "LH coarse", w: 7, h: 5, levels: 2, band: SubbandLH, level: 1, wantW: 2, wantH: 1},
		{name: "HL fine", w: 7, h: 5, levels: 2, band: SubbandHL, level: 2, wantW: 3, wantH: 3},
		{name: "even dims", w: 8, h: 8, levels: 1, band: SubbandHH, level: 1, wantW: 4, wantH: 4},
		{name: "single column", w: 1, h: 6, levels: 1, band: SubbandHL, level: 1, wantW: 0, wantH: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := subbandDims(tt.w, tt.h, tt.levels, tt.band, tt.level)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, gotW, gotH)
			}
		})
	}

	// Band widths at each split must sum back to the parent width.
	w, h := 7, 5
	llW, llH := subbandDims(w, h, 2, SubbandLL, 0)
	for level := 1; level <= 2; level++ {
		hlW, _ := subbandDims(w, h, 2, SubbandHL, level)
		_, lhH := subbandDims(w, h, 2, SubbandLH, level)
		llW += hlW
		llH += lhH
	}
	if llW != w || llH != h {
		t.Errorf("Band dims do not recompose: got %dx%d, want %dx%d", llW, llH, w, h)
	}
}

func TestSubbandLevel(t *testing.T) {
	want := []int{0, 1, 1, 1, 2, 2, 2, 3, 3, 3}
	for i, w := range want {
		if got := subbandLevel(i); got != w {
			t.Errorf("Index %d: expected level %d, got %d", i, w, got)
		}
	}
}

func TestSubbandStep(t *testing.T) {
	expounded := SubbandQuant{
		Style:     QuantExpounded,
		GuardBits: 2,
		Steps: []StepSize{
			{Exponent: 9, Mantissa: 100},
			{Exponent: 10, Mantissa: 200},
			{Exponent: 10, Mantissa: 300},
			{Exponent: 11, Mantissa: 400},
		},
	}
	if s := subbandStep(expounded, 2, 1); s.Mantissa != 300 {
		t.Errorf("Expounded index 2: expected mantissa 300, got %d", s.Mantissa)
	}
	if s := subbandStep(expounded, 7, 3); s != (StepSize{}) {
		t.Errorf("Missing expounded entry: expected zero step, got %+v", s)
	}

	derived := SubbandQuant{
		Style:     QuantDerived,
		GuardBits: 2,
		Steps:     []StepSize{{Exponent: 10, Mantissa: 150}},
	}
	if s := subbandStep(derived, 0, 0); s.Exponent != 10 || s.Mantissa != 150 {
		t.Errorf("Derived LL: expected {10 150}, got %+v", s)
	}
	if s := subbandStep(derived, 1, 1); s.Exponent != 10 {
		t.Errorf("Derived level 1: expected exponent 10, got %d", s.Exponent)
	}
	if s := subbandStep(derived, 4, 2); s.Exponent != 9 {
		t.Errorf("Derived level 2: expected exponent 9, got %d", s.Exponent)
	}
	if s := subbandStep(SubbandQuant{Style: QuantDerived}, 0, 0); s != (StepSize{}) {
		t.Errorf("Derived with no steps: expected zero step, got %+v", s)
	}
}

func TestSubbandMb(t *testing.T) {
	q := SubbandQuant{GuardBits: 2}
	if mb := subbandMb(q, StepSize{Exponent: 10}); mb != 11 {
		t.Errorf("Expected Mb=11, got %d", mb)
	}
	if mb := subbandMb(q, StepSize{Exponent: 40}); mb != 31 {
		t.Errorf("Expected Mb clamped to 31, got %d", mb)
	}
	if mb := subbandMb(SubbandQuant{}, StepSize{}); mb > 0 {
		t.Errorf("Expected non-positive Mb for zero signalling, got %d", mb)
	}
}

func quantForLevels(levels int) SubbandQuant {
	steps := make([]StepSize, 1+3*levels)
	for i := range steps {
		steps[i] = StepSize{Exponent: 10}
	}
	return SubbandQuant{Style: QuantExpounded, GuardBits: 2, Steps: steps}
}

func emptySubbands(levels int) []*SubbandInput {
	types := []SubbandType{SubbandLL}
	for i := 0; i < levels; i++ {
		types = append(types, SubbandHL, SubbandLH, SubbandHH)
	}
	out := make([]*SubbandInput, len(types))
	for i, ty := range types {
		out[i] = &SubbandInput{Type: ty}
	}
	return out
}

func TestDecodeTileComponentValidation(t *testing.T) {
	tests := []struct {
		name string
		tc   TileComponentInput
	}{
		{
			name: "wrong subband count",
			tc: TileComponentInput{
				Levels: 2, CodeBlockWidth: 64, CodeBlockHeight: 64,
				Quant: quantForLevels(2), Subbands: emptySubbands(1),
			},
		},
		{
			name: "code-block size not power of two",
			tc: TileComponentInput{
				Levels: 1, CodeBlockWidth: 48, CodeBlockHeight: 64,
				Quant: quantForLevels(1), Subbands: emptySubbands(1),
			},
		},
		{
			name: "code-block size too small",
			tc: TileComponentInput{
				Levels: 1, CodeBlockWidth: 64, CodeBlockHeight: 2,
				Quant: quantForLevels(1), Subbands: emptySubbands(1),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeTileComponent(&tt.tc, 16, 16, 0); !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestDecodeTileComponentEmpty(t *testing.T) {
	tc := &TileComponentInput{
		Levels: 2, CodeBlockWidth: 64, CodeBlockHeight: 64,
		Quant: quantForLevels(2), Subbands: emptySubbands(2),
	}
	subbands, err := decodeTileComponent(tc, 13, 9, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(subbands) != 7 {
		t.Fatalf("Expected 7 subbands, got %d", len(subbands))
	}
	for i, sb := range subbands {
		wantW, wantH := subbandDims(13, 9, 2, sb.Type, sb.Level)
		if sb.Width != wantW || sb.Height != wantH {
			t.Errorf("Subband %d (%s): expected %dx%d, got %dx%d",
				i, sb.Type, wantW, wantH, sb.Width, sb.Height)
		}
		if len(sb.Coeffs) != sb.Height {
			t.Errorf("Subband %d: %d coefficient rows for height %d", i, len(sb.Coeffs), sb.Height)
		}
		for _, row := range sb.Coeffs {
			for _, v := range row {
				if v != 0 {
					t.Fatalf("Subband %d: expected zero grid", i)
				}
			}
		}
	}
}

// TestDecodeTileComponentPlacement decodes a single 1x1 code-block sitting
// at grid position (1,0) and checks its coefficient lands at x=4 with the
// nominal 4-wide block size, sequentially and with a worker pool.
func TestDecodeTileComponentPlacement(t *testing.T) {
	for _, workers := range []int{0, 4} {
		tc := &TileComponentInput{
			Levels: 0, CodeBlockWidth: 4, CodeBlockHeight: 4,
			Quant:    quantForLevels(0),
			Subbands: []*SubbandInput{{
				Type: SubbandLL,
				CodeBlocks: []*CodeBlockBitstream{{
					X: 1, Y: 0, Width: 1, Height: 1,
					NumPasses: 1, ZeroBitPlanes: 30,
					Data: []byte{0x00, 0x00},
				}},
			}},
		}
		subbands, err := decodeTileComponent(tc, 6, 1, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		ll := subbands[0]
		for x := 0; x < ll.Width; x++ {
			v := ll.Coeffs[0][x]
			if x == 4 {
				if v == 0 {
					t.Errorf("workers=%d: expected nonzero coefficient at x=4", workers)
				}
				continue
			}
			if v != 0 {
				t.Errorf("workers=%d: unexpected coefficient %d at x=%d", workers, v, x)
			}
		}
	}
}
