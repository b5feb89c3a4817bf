// Package spectral computes cepstral and linear prediction feature matrices
// from raw audio samples.
package spectral

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrSignalTooShort is returned when the signal does not fill one frame.
	ErrSignalTooShort = errors.New("signal shorter than one analysis window")
	// ErrInvalidFrequencyRange is returned for ranges outside 0..Nyquist.
	ErrInvalidFrequencyRange = errors.New("invalid frequency range")
	// ErrInvalidParameter covers non-positive sizes and orders.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// eps replaces zero energies before taking logarithms.
const eps = 2.220446049250313e-16

func preEmphasis(sig []float64, coeff float64) []float64 {
	out := make([]float64, len(sig))
	if len(sig) == 0 {
		return out
	}
	out[0] = sig[0]
	for i := 1; i < len(sig); i++ {
		out[i] = sig[i] - coeff*sig[i-1]
	}
	return out
}

// frameSizes converts window length and hop from seconds to samples.
func frameSizes(length, hop float64, fs int) (int, int, error) {
	frameLen := int(length * float64(fs))
	frameStep := int(hop * float64(fs))
	if frameLen <= 0 || frameStep <= 0 {
		return 0, 0, fmt.Errorf("%w: window %gs hop %gs at %d Hz", ErrInvalidParameter, length, hop, fs)
	}
	if frameStep > frameLen {
		return 0, 0, fmt.Errorf("%w: hop %gs exceeds window %gs", ErrInvalidParameter, hop, length)
	}
	return frameLen, frameStep, nil
}

// frameSignal splits sig into overlapping frames. The tail is zero padded so
// that the last frame ends on a whole hop and no sample is dropped.
func frameSignal(sig []float64, frameLen, frameStep int) ([][]float64, error) {
	if len(sig) < frameLen {
		return nil, fmt.Errorf("%w: %d samples, window needs %d", ErrSignalTooShort, len(sig), frameLen)
	}
	overlap := frameLen - frameStep
	rest := (len(sig) - overlap) % frameStep
	padded := sig
	if rest != 0 {
		padded = make([]float64, len(sig)+frameStep-rest)
		copy(padded, sig)
	}

	n := (len(padded)-frameLen)/frameStep + 1
	frames := make([][]float64, n)
	for i := range frames {
		f := make([]float64, frameLen)
		copy(f, padded[i*frameStep:i*frameStep+frameLen])
		frames[i] = f
	}
	return frames, nil
}

// hamming returns symmetric Hamming coefficients.
func hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	den := float64(n - 1)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/den)
	}
	return w
}

func windowFrames(frames [][]float64, shape string) error {
	if len(frames) == 0 {
		return nil
	}
	var coeffs []float64
	switch shape {
	case "hamming", "":
		coeffs = hamming(len(frames[0]))
	case "rectangular":
		return nil
	default:
		return fmt.Errorf("%w: window shape %q", ErrInvalidParameter, shape)
	}
	for _, f := range frames {
		vecmath.MulBlockInPlace(f, coeffs)
	}
	return nil
}

// powerSpectrum returns |FFT|²/nfft over bins 0..nfft/2 for every frame.
// Frames are zero padded or truncated to nfft.
func powerSpectrum(frames [][]float64, nfft int) [][]float64 {
	fft := fourier.NewFFT(nfft)
	bins := nfft/2 + 1
	seq := make([]float64, nfft)
	coeffs := make([]complex128, bins)
	re := make([]float64, bins)
	im := make([]float64, bins)

	out := make([][]float64, len(frames))
	for i, f := range frames {
		for j := range seq {
			seq[j] = 0
		}
		copy(seq, f)
		coeffs = fft.Coefficients(coeffs, seq)
		for k, c := range coeffs {
			re[k] = real(c)
			im[k] = imag(c)
		}
		row := make([]float64, bins)
		vecmath.Power(row, re, im)
		for k := range row {
			row[k] /= float64(nfft)
		}
		out[i] = row
	}
	return out
}

// frequencyRange resolves a zero high frequency to Nyquist and validates the
// range against the sample rate.
func frequencyRange(low, high float64, fs int) (float64, float64, error) {
	nyquist := float64(fs) / 2
	if high == 0 {
		high = nyquist
	}
	if low < 0 || high > nyquist || low >= high {
		return 0, 0, fmt.Errorf("%w: %g..%g Hz at %d Hz sample rate", ErrInvalidFrequencyRange, low, high, fs)
	}
	return low, high, nil
}
