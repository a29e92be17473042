package jpx

import (
	"fmt"
	"image"
)

// DecodeOptions tunes decoder behavior. The zero value is a valid
// configuration.
type DecodeOptions struct {
	// Workers bounds the number of code-blocks decoded concurrently within
	// a subband. Values <= 1 decode sequentially.
	Workers int
}

// outChannel maps one output channel to its codestream component and, for
// palette-mapped channels, the palette column supplying its samples.
type outChannel struct {
	comp      int
	palCol    int // -1 for direct mapping
	precision int
	signed    bool
}

// Decoder reconstructs pixels from tier-2 outputs, one tile at a time. It
// is not safe for concurrent use; decode tiles from a single goroutine.
type Decoder struct {
	params  ImageParams
	workers int

	numOut   int
	channels []outChannel

	pix []byte
}

// NewDecoder validates the image-level parameters and prepares the output
// buffer. opts may be nil for defaults.
func NewDecoder(params ImageParams, opts *DecodeOptions) (*Decoder, error) {
	if params.Width < 1 || params.Height < 1 {
		return nil, fmt.Errorf("%w: image %dx%d", ErrInvalidGeometry, params.Width, params.Height)
	}
	if len(params.Components) == 0 {
		return nil, fmt.Errorf("%w: no components", ErrInvalidGeometry)
	}
	if params.Wavelet != Wavelet53 && params.Wavelet != Wavelet97 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWavelet, params.Wavelet)
	}
	for i := range params.Components {
		c := &params.Components[i]
		if c.Precision < 1 || c.Precision > 31 {
			return nil, fmt.Errorf("%w: component %d precision %d", ErrInvalidGeometry, i, c.Precision)
		}
		if c.DX < 0 || c.DY < 0 {
			return nil, fmt.Errorf("%w: component %d subsampling %dx%d", ErrInvalidGeometry, i, c.DX, c.DY)
		}
	}

	d := &Decoder{params: params}
	if opts != nil {
		d.workers = opts.Workers
	}
	if err := d.resolveChannels(); err != nil {
		return nil, err
	}
	d.pix = make([]byte, params.Width*params.Height*d.numOut)
	return d, nil
}

// resolveChannels builds the output-channel table from the component
// mapping (cmap) when present, or one direct channel per component.
func (d *Decoder) resolveChannels() error {
	p := &d.params
	if len(p.ComponentMap) == 0 {
		d.channels = make([]outChannel, len(p.Components))
		for i, c := range p.Components {
			d.channels[i] = outChannel{comp: i, palCol: -1, precision: c.Precision, signed: c.Signed}
		}
		d.numOut = len(d.channels)
		return nil
	}

	d.channels = make([]outChannel, 0, len(p.ComponentMap))
	for i, m := range p.ComponentMap {
		if m.Component < 0 || m.Component >= len(p.Components) {
			return fmt.Errorf("%w: cmap entry %d references component %d", ErrInvalidGeometry, i, m.Component)
		}
		ch := outChannel{comp: m.Component, palCol: -1}
		if m.MappingType == 1 {
			pal := p.Palette
			if pal == nil || m.PaletteCol < 0 || m.PaletteCol >= pal.NumColumns ||
				m.PaletteCol >= len(pal.BitDepths) || pal.NumEntries < 1 || pal.NumEntries > len(pal.Entries) {
				return fmt.Errorf("%w: cmap entry %d has no usable palette column", ErrInvalidGeometry, i)
			}
			ch.palCol = m.PaletteCol
			ch.precision = pal.BitDepths[m.PaletteCol]
			if m.PaletteCol < len(pal.Signed) {
				ch.signed = pal.Signed[m.PaletteCol]
			}
			if ch.precision < 1 || ch.precision > 31 {
				return fmt.Errorf("%w: palette column %d depth %d", ErrInvalidGeometry, m.PaletteCol, ch.precision)
			}
		} else {
			c := p.Components[m.Component]
			ch.precision = c.Precision
			ch.signed = c.Signed
		}
		d.channels = append(d.channels, ch)
	}
	d.numOut = len(d.channels)
	return nil
}

// subsample normalizes a subsampling factor: zero means none.
func subsample(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// DecodeTile runs the full reconstruction pipeline for one tile and writes
// its pixels into the output buffer. Tiles may be decoded in any order;
// each writes only its own region.
func (d *Decoder) DecodeTile(tile *TileInput) error {
	if tile == nil {
		return fmt.Errorf("%w: nil tile", ErrInvalidGeometry)
	}
	if tile.Width < 1 || tile.Height < 1 || tile.X0 < 0 || tile.Y0 < 0 ||
		tile.X0+tile.Width > d.params.Width || tile.Y0+tile.Height > d.params.Height {
		return fmt.Errorf("%w: tile %d bounds %dx%d+%d+%d", ErrInvalidGeometry,
			tile.Index, tile.Width, tile.Height, tile.X0, tile.Y0)
	}
	if len(tile.Components) != len(d.params.Components) {
		return fmt.Errorf("%w: tile %d has %d components, image has %d", ErrInvalidGeometry,
			tile.Index, len(tile.Components), len(d.params.Components))
	}

	reversible := d.params.Wavelet == Wavelet53
	rec := &ReconstructedTile{
		Index:  tile.Index,
		X0:     tile.X0,
		Y0:     tile.Y0,
		Width:  tile.Width,
		Height: tile.Height,
	}
	if reversible {
		rec.Ints = make([][][]int32, len(tile.Components))
	} else {
		rec.Floats = make([][][]float64, len(tile.Components))
	}
	for i, tc := range tile.Components {
		comp := d.params.Components[i]
		compW := (tile.Width + subsample(comp.DX) - 1) / subsample(comp.DX)
		compH := (tile.Height + subsample(comp.DY) - 1) / subsample(comp.DY)

		subbands, err := decodeTileComponent(tc, compW, compH, d.workers)
		if err != nil {
			return fmt.Errorf("tile %d component %d: %w", tile.Index, i, err)
		}

		bands := make([]*SubbandGrid, len(subbands))
		for j, sb := range subbands {
			bands[j] = dequantizeSubband(sb, reversible, comp.Precision)
		}
		coeffs := &DwtCoefficients{Levels: tc.Levels, Bands: bands}

		if reversible {
			grid, err := synthesizeInts(coeffs)
			if err != nil {
				return fmt.Errorf("tile %d component %d: %w", tile.Index, i, err)
			}
			rec.Ints[i] = grid
		} else {
			grid, err := synthesizeFloats(coeffs)
			if err != nil {
				return fmt.Errorf("tile %d component %d: %w", tile.Index, i, err)
			}
			rec.Floats[i] = grid
		}
	}

	d.renderTile(rec)
	return nil
}

// NumChannels returns the number of interleaved output channels.
func (d *Decoder) NumChannels() int {
	return d.numOut
}

// Pixels returns the interleaved 8-bit output buffer, row-major with
// NumChannels bytes per pixel. The buffer is owned by the decoder and
// filled in as tiles decode.
func (d *Decoder) Pixels() []byte {
	return d.pix
}

// Image assembles the decoded pixels into an image.RGBA: one channel
// replicates to gray, three map to RGB, and a fourth supplies alpha.
func (d *Decoder) Image() *image.RGBA {
	w, h := d.params.Width, d.params.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * d.numOut
			dst := img.PixOffset(x, y)
			var r, g, b, a uint8
			a = 255
			switch {
			case d.numOut >= 3:
				r = d.pix[src]
				g = d.pix[src+1]
				b = d.pix[src+2]
				if d.numOut >= 4 {
					a = d.pix[src+3]
				}
			case d.numOut == 2:
				r = d.pix[src]
				g, b = r, r
				a = d.pix[src+1]
			default:
				r = d.pix[src]
				g, b = r, r
			}
			img.Pix[dst+0] = r
			img.Pix[dst+1] = g
			img.Pix[dst+2] = b
			img.Pix[dst+3] = a
		}
	}
	return img
}
