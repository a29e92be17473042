package jpx

// Context assignment tables for the significance-propagation and sign
// decoding primitives of ITU-T T.800 Annex D.
//
// Significance contexts are selected from the counts of significant
// neighbors: h (horizontal, 0..2), v (vertical, 0..2) and d (diagonal,
// 0..4). The tables are indexed (h*3+v)*5+d and yield context numbers
// 2..10. LL and LH bands share one table; HL swaps the roles of h and v;
// HH keys primarily on the diagonal count.

var sigCtxLL = [45]uint8{
	// h=0
	2, 3, 4, 4, 4, // v=0
	5, 5, 5, 5, 5, // v=1
	6, 6, 6, 6, 6, // v=2
	// h=1
	7, 8, 8, 8, 8,
	9, 9, 9, 9, 9,
	9, 9, 9, 9, 9,
	// h=2
	10, 10, 10, 10, 10,
	10, 10, 10, 10, 10,
	10, 10, 10, 10, 10,
}

var sigCtxHL = [45]uint8{
	// h=0
	2, 3, 4, 4, 4,
	7, 8, 8, 8, 8,
	10, 10, 10, 10, 10,
	// h=1
	5, 5, 5, 5, 5,
	9, 9, 9, 9, 9,
	10, 10, 10, 10, 10,
	// h=2
	6, 6, 6, 6, 6,
	9, 9, 9, 9, 9,
	10, 10, 10, 10, 10,
}

var sigCtxHH = [45]uint8{
	// h=0
	2, 5, 8, 10, 10,
	3, 6, 9, 10, 10,
	4, 7, 9, 10, 10,
	// h=1
	3, 6, 9, 10, 10,
	4, 7, 9, 10, 10,
	4, 7, 9, 10, 10,
	// h=2
	4, 7, 9, 10, 10,
	4, 7, 9, 10, 10,
	4, 7, 9, 10, 10,
}

// sigCtxTable returns the significance-context table for a subband type.
func sigCtxTable(t SubbandType) *[45]uint8 {
	switch t {
	case SubbandHL:
		return &sigCtxHL
	case SubbandHH:
		return &sigCtxHH
	}
	return &sigCtxLL
}

// Sign decoding per T.800 Table D.6. The horizontal and vertical sign
// contributions (each the sum of the two neighbors' signs, clamped to
// [-1, 1]) select a context 11..15 and an XOR that flips the decoded bit.
// Indexed [h+1][v+1].
var signCtx = [3][3]uint8{
	{15, 14, 13}, // h = -1
	{12, 11, 12}, // h =  0
	{13, 14, 15}, // h = +1
}

var signFlip = [3][3]uint8{
	{1, 1, 1},
	{1, 0, 0},
	{0, 0, 0},
}
