// Package jpx implements the JPEG2000 pixel-reconstruction core.
//
// The package turns per-code-block compressed bitstreams (the output of
// tier-2 packet parsing, which is outside this package) into final
// interleaved pixel data. The pipeline is:
//
//	code-block bitstreams -> tier-1 EBCOT decode -> quantized subbands
//	-> dequantization -> inverse wavelet synthesis (5/3 or 9/7)
//	-> color post-processing (RCT/ICT, level shift, clamping) -> bytes
//
// Typical use:
//
//	dec, err := jpx.NewDecoder(params, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, tile := range tiles {
//	    if err := dec.DecodeTile(tile); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	pix := dec.Pixels()
//
// Container/box parsing, packet-header parsing and encoding are not
// implemented here; callers supply their results via ImageParams and
// TileInput.
package jpx
