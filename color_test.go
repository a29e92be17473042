package jpx

import (
	"math"
	"testing"
)

func TestApplyInverseRCT(t *testing.T) {
	tests := []struct {
		name      string
		y, cb, cr int32
		wantR     int32
		wantG     int32
		wantB     int32
	}{
		{name: "gray", y: 128, cb: 0, cr: 0, wantR: 128, wantG: 128, wantB: 128},
		{name: "zero", y: 0, cb: 0, cr: 0, wantR: 0, wantG: 0, wantB: 0},
		{name: "mixed", y: 100, cb: 20, cr: -12, wantR: 86, wantG: 98, wantB: 118},
		{name: "negative chroma", y: 50, cb: -8, cr: -4, wantR: 49, wantG: 53, wantB: 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := [][]int32{{tt.y}}
			cb := [][]int32{{tt.cb}}
			cr := [][]int32{{tt.cr}}
			r, g, b := applyInverseRCT(y, cb, cr)
			if r[0][0] != tt.wantR || g[0][0] != tt.wantG || b[0][0] != tt.wantB {
				t.Errorf("Expected RGB (%d,%d,%d), got (%d,%d,%d)",
					tt.wantR, tt.wantG, tt.wantB, r[0][0], g[0][0], b[0][0])
			}
		})
	}
}

func TestApplyInverseICT(t *testing.T) {
	tests := []struct {
		name      string
		y, cb, cr float64
		wantR     float64
		wantG     float64
		wantB     float64
	}{
		{name: "gray", y: 100, cb: 0, cr: 0, wantR: 100, wantG: 100, wantB: 100},
		{name: "red chroma", y: 0, cb: 0, cr: 100, wantR: 140.2, wantG: -71.4136, wantB: 0},
		{name: "blue chroma", y: 0, cb: 100, cr: 0, wantR: 0, wantG: -34.4136, wantB: 177.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := [][]float64{{tt.y}}
			cb := [][]float64{{tt.cb}}
			cr := [][]float64{{tt.cr}}
			r, g, b := applyInverseICT(y, cb, cr)
			const tol = 1e-9
			if math.Abs(r[0][0]-tt.wantR) > tol ||
				math.Abs(g[0][0]-tt.wantG) > tol ||
				math.Abs(b[0][0]-tt.wantB) > tol {
				t.Errorf("Expected RGB (%g,%g,%g), got (%g,%g,%g)",
					tt.wantR, tt.wantG, tt.wantB, r[0][0], g[0][0], b[0][0])
			}
		})
	}
}
