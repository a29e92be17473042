package jpx

import (
	hwyimage "github.com/ajroetker/go-highway/hwy/contrib/image"
)

// applyInverseRCT applies the inverse Reversible Color Transform (lossless).
// Converts from YCbCr to RGB using integer arithmetic per ITU-T T.800 G.2:
//
//	G = Y - floor((Cb + Cr) / 4)
//	R = Cr + G
//	B = Cb + G
func applyInverseRCT(y, cb, cr [][]int32) (r, g, b [][]int32) {
	height := len(y)
	if height == 0 {
		return nil, nil, nil
	}
	width := len(y[0])

	buf := getInt32Buf(width, height)
	defer putInt32Buf(buf)

	slicesToImageInPlace(y, buf.imgs[0])
	slicesToImageInPlace(cb, buf.imgs[1])
	slicesToImageInPlace(cr, buf.imgs[2])

	hwyimage.InverseRCT(buf.imgs[0], buf.imgs[1], buf.imgs[2], buf.imgs[3], buf.imgs[4], buf.imgs[5])

	r = imageToSlices(buf.imgs[3])
	g = imageToSlices(buf.imgs[4])
	b = imageToSlices(buf.imgs[5])

	return r, g, b
}

// applyInverseICT applies the inverse Irreversible Color Transform (lossy).
// Standard YCbCr to RGB conversion with JPEG2000 coefficients:
//
//	R = Y + 1.402 * Cr
//	G = Y - 0.344136 * Cb - 0.714136 * Cr
//	B = Y + 1.772 * Cb
func applyInverseICT(y, cb, cr [][]float64) (r, g, b [][]float64) {
	height := len(y)
	if height == 0 {
		return nil, nil, nil
	}
	width := len(y[0])

	buf := getFloat64Buf(width, height)
	defer putFloat64Buf(buf)

	slicesToImageInPlace(y, buf.imgs[0])
	slicesToImageInPlace(cb, buf.imgs[1])
	slicesToImageInPlace(cr, buf.imgs[2])

	hwyimage.InverseICT(buf.imgs[0], buf.imgs[1], buf.imgs[2], buf.imgs[3], buf.imgs[4], buf.imgs[5])

	r = imageToSlices(buf.imgs[3])
	g = imageToSlices(buf.imgs[4])
	b = imageToSlices(buf.imgs[5])

	return r, g, b
}
