package jpx

// SubbandType identifies the orientation of a wavelet subband.
type SubbandType int

const (
	SubbandLL SubbandType = iota // Low-low (approximation)
	SubbandHL                    // High-low (horizontal detail)
	SubbandLH                    // Low-high (vertical detail)
	SubbandHH                    // High-high (diagonal detail)
)

func (s SubbandType) String() string {
	switch s {
	case SubbandLL:
		return "LL"
	case SubbandHL:
		return "HL"
	case SubbandLH:
		return "LH"
	case SubbandHH:
		return "HH"
	}
	return "??"
}

// WaveletType indicates the wavelet filter used
type WaveletType int

const (
	Wavelet53 WaveletType = iota // 5/3 reversible (lossless)
	Wavelet97                    // 9/7 irreversible (lossy)
)

// ColorSpace holds the enumerated color space per ITU-T T.800 Table I.1.
// Only the values relevant to the color-transform decision are named.
type ColorSpace uint32

const (
	ColorSpaceUnknown   ColorSpace = 0
	ColorSpaceSRGB      ColorSpace = 16
	ColorSpaceGrayscale ColorSpace = 17
	ColorSpaceSYCC      ColorSpace = 18
)

// Code-block style flags (from the COD/COC cblksty field).
const (
	StyleBypass        byte = 0x01 // Selective arithmetic coding bypass
	StyleResetContext  byte = 0x02 // Reset context probabilities on pass boundaries
	StyleTerminateAll  byte = 0x04 // Termination on each coding pass
	StyleVertCausal    byte = 0x08 // Vertically causal context
	StylePredTerm      byte = 0x10 // Predictable termination
	StyleSegmentSymbol byte = 0x20 // Segmentation symbols after cleanup passes
)

// CodeBlockBitstream is the tier-2 output for one code-block: its compressed
// bytes plus the geometry and pass information needed to decode it.
// Immutable; produced once by the packet parser, consumed once here.
type CodeBlockBitstream struct {
	Data []byte

	// Block coordinates within the subband's code-block grid.
	X, Y int

	// Actual block dimensions (edge blocks may be smaller than nominal).
	Width, Height int

	NumPasses     int
	ZeroBitPlanes int
	Style         byte
}

// QuantStyle selects how subband step sizes were signalled (SQcd/SQcc).
type QuantStyle int

const (
	QuantNone      QuantStyle = iota // No quantization (reversible)
	QuantDerived                     // Scalar derived: one step, others derived
	QuantExpounded                   // Scalar expounded: one step per subband
)

// StepSize is one (exponent, mantissa) quantization step pair.
type StepSize struct {
	Exponent int
	Mantissa int
}

// SubbandQuant carries the quantization signalling for one tile-component.
type SubbandQuant struct {
	Style     QuantStyle
	GuardBits int
	Steps     []StepSize
}

// SubbandInput groups the code-blocks of one subband.
type SubbandInput struct {
	Type       SubbandType
	CodeBlocks []*CodeBlockBitstream
}

// TileComponentInput is everything tier-2 yields for one component of one
// tile. Subbands are ordered LL first, then HL/LH/HH per resolution level
// from coarsest to finest (1 + 3*Levels entries).
type TileComponentInput struct {
	Levels int

	// Nominal code-block dimensions (powers of two, 4..1024).
	CodeBlockWidth  int
	CodeBlockHeight int

	Quant    SubbandQuant
	Subbands []*SubbandInput
}

// TileInput describes one tile: its placement within the image grid and the
// per-component tier-2 outputs.
type TileInput struct {
	Index         int
	X0, Y0        int
	Width, Height int
	Components    []*TileComponentInput
}

// ComponentParams describes one image component.
type ComponentParams struct {
	Precision int  // Bits per sample (1..31)
	Signed    bool // Sample signedness
	DX, DY    int  // Subsampling factors (0 or 1 mean none)
}

// ChannelDef is one channel-definition (cdef) entry per ITU-T T.800 I.5.3.6.
type ChannelDef struct {
	Channel     int // Channel number (Cn)
	Type        int // 0=color, 1=opacity, 2=premultiplied opacity, 0xFFFF=unspecified
	Association int // 1=R/Y, 2=G/Cb, 3=B/Cr, 0=whole image, 0xFFFF=unspecified
}

// Palette holds palette (pclr) data per ITU-T T.800 I.5.3.4.
type Palette struct {
	NumEntries int
	NumColumns int
	BitDepths  []int
	Signed     []bool
	Entries    [][]int // [entry][column]
}

// ComponentMapping is one component-mapping (cmap) entry per I.5.3.5.
type ComponentMapping struct {
	Component   int // Codestream component index (CMP)
	MappingType int // 0=direct, 1=palette mapping (MTYP)
	PaletteCol  int // Palette column (PCOL), used when MappingType=1
}

// ImageParams carries the image-level inputs from the container and main
// codestream headers.
type ImageParams struct {
	Width, Height int
	Components    []ComponentParams

	Wavelet    WaveletType
	MCT        bool // Multiple-component-transform flag from COD
	ColorSpace ColorSpace

	ChannelDefs  []ChannelDef
	Palette      *Palette
	ComponentMap []ComponentMapping
}

// QuantizedSubband is the tier-1 output for one subband: the decoded integer
// coefficient grid plus the step information the dequantizer needs.
// Coefficient magnitudes are anchored at bit 30 (the first decoded bit-plane
// is 30 - zeroBitPlanes); Mb records how many magnitude bit-planes the
// subband nominally carries.
type QuantizedSubband struct {
	Type          SubbandType
	Level         int // Resolution level: 0 for LL, 1..Levels for detail bands
	Width, Height int
	Step          StepSize
	Mb            int
	Coeffs        [][]int32
}

// SubbandGrid is one dequantized subband plane. Exactly one of Ints or
// Floats is populated: Ints on the reversible path, Floats on the
// irreversible path.
type SubbandGrid struct {
	Type          SubbandType
	Width, Height int
	Ints          [][]int32
	Floats        [][]float64
}

// DwtCoefficients is the inverse-wavelet input for one component: the
// decomposition level count plus the ordered subband planes (LL first, then
// HL/LH/HH per level from coarsest to finest).
type DwtCoefficients struct {
	Levels int
	Bands  []*SubbandGrid
}

// ReconstructedTile holds the synthesized full-resolution planes of one
// tile, one per component, prior to color post-processing. As with
// SubbandGrid, exactly one of Ints or Floats is populated.
type ReconstructedTile struct {
	Index         int
	X0, Y0        int
	Width, Height int
	Ints          [][][]int32
	Floats        [][][]float64
}
