package jpx

import "errors"

var (
	ErrInvalidGeometry        = errors.New("jpx: invalid geometry")
	ErrUnsupportedCodingStyle = errors.New("jpx: unsupported code-block coding style")
	ErrUnsupportedWavelet     = errors.New("jpx: unsupported wavelet filter")
)
