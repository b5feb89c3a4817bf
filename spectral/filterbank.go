package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

func hzToMel(f float64) float64 { return 2595 * math.Log10(1+f/700) }
func melToHz(m float64) float64 { return 700 * (math.Pow(10, m/2595) - 1) }

func hzToBark(f float64) float64 { return 6 * math.Asinh(f/600) }
func barkToHz(b float64) float64 { return 600 * math.Sinh(b/6) }

// fftBin maps a frequency to its FFT bin, floor((nfft+1)*f/fs).
func fftBin(f float64, nfft, fs int) int {
	return int(math.Floor(float64(nfft+1) * f / float64(fs)))
}

// triangularBank builds nfilts overlapping triangles whose edges are evenly
// spaced on the scale given by toScale/fromScale.
func triangularBank(nfilts, nfft, fs int, low, high float64, toScale, fromScale func(float64) float64) ([][]float64, error) {
	if nfilts <= 0 || nfft <= 0 {
		return nil, fmt.Errorf("%w: %d filters, nfft %d", ErrInvalidParameter, nfilts, nfft)
	}
	points := make([]float64, nfilts+2)
	floats.Span(points, toScale(low), toScale(high))

	bins := make([]float64, len(points))
	for i, p := range points {
		bins[i] = math.Floor(float64(nfft+1) * fromScale(p) / float64(fs))
	}

	width := nfft/2 + 1
	bank := make([][]float64, nfilts)
	for j := range bank {
		row := make([]float64, width)
		b0, b1, b2 := bins[j], bins[j+1], bins[j+2]
		for k := int(b0); k < int(b1) && k < width; k++ {
			row[k] = (float64(k) - b0) / (b1 - b0)
		}
		for k := int(b1); k < int(b2) && k < width; k++ {
			row[k] = (b2 - float64(k)) / (b2 - b1)
		}
		bank[j] = row
	}
	return bank, nil
}

func melBank(nfilts, nfft, fs int, low, high float64) ([][]float64, error) {
	return triangularBank(nfilts, nfft, fs, low, high, hzToMel, melToHz)
}

func identity(f float64) float64 { return f }

func linearBank(nfilts, nfft, fs int, low, high float64) ([][]float64, error) {
	return triangularBank(nfilts, nfft, fs, low, high, identity, identity)
}

// barkBank builds the critical band masking curves used by PLP. It also
// returns the centre frequency of every band in Hz.
func barkBank(nfilts, nfft, fs int, low, high float64) ([][]float64, []float64, error) {
	if nfilts <= 0 || nfft <= 0 {
		return nil, nil, fmt.Errorf("%w: %d filters, nfft %d", ErrInvalidParameter, nfilts, nfft)
	}
	points := make([]float64, nfilts+4)
	floats.Span(points, hzToBark(low), hzToBark(high))

	width := nfft/2 + 1
	bank := make([][]float64, nfilts)
	centres := make([]float64, nfilts)
	for j := 2; j < nfilts+2; j++ {
		row := make([]float64, width)
		fc := points[j]
		lo := fftBin(barkToHz(points[j-2]), nfft, fs)
		hi := fftBin(barkToHz(points[j+2]), nfft, fs)
		for k := lo; k < hi && k < width; k++ {
			fb := hzToBark(float64(k) * float64(fs) / float64(nfft+1))
			row[k] = maskingCurve(fb, fc)
		}
		bank[j-2] = row
		centres[j-2] = barkToHz(fc)
	}
	return bank, centres, nil
}

func maskingCurve(fb, fc float64) float64 {
	switch {
	case fb >= fc-2.5 && fb <= fc-0.5:
		return math.Pow(10, 2.5*(fb-fc+0.5))
	case fb > fc-0.5 && fb < fc+0.5:
		return 1
	case fb >= fc+0.5 && fb <= fc+1.3:
		return math.Pow(10, -2.5*(fb-fc-0.5))
	}
	return 0
}

// applyBank projects every spectrum row onto the filter bank.
func applyBank(spec, bank [][]float64) [][]float64 {
	out := make([][]float64, len(spec))
	for i, row := range spec {
		energies := make([]float64, len(bank))
		for j, filter := range bank {
			energies[j] = floats.Dot(row, filter)
		}
		out[i] = energies
	}
	return out
}
