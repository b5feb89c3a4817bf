package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/maastricht-university/stress-features/features"
)

// PLP computes perceptual linear prediction cepstra of order cfg.NumCeps.
func PLP(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	if cfg.NumCeps < 2 || cfg.Filters < 2 || cfg.NumCeps > 2*(cfg.Filters-1) {
		return nil, fmt.Errorf("%w: plp order %d with %d filters", ErrInvalidParameter, cfg.NumCeps, cfg.Filters)
	}
	low, high, err := frequencyRange(cfg.LowFreq, cfg.HighFreq, fs)
	if err != nil {
		return nil, err
	}
	spec, err := spectrogram(sig, fs, cfg)
	if err != nil {
		return nil, err
	}
	fb, centres, err := barkBank(cfg.Filters, cfg.FFTSize, fs, low, high)
	if err != nil {
		return nil, err
	}

	loudness := make([]float64, len(centres))
	for j, f := range centres {
		loudness[j] = equalLoudness(2 * math.Pi * f)
	}

	// The compressed auditory spectrum is mirrored into a real, even
	// sequence of length 2(M-1); its inverse FFT is the autocorrelation.
	m := cfg.Filters
	n := 2 * (m - 1)
	ifft := fourier.NewFFT(n)
	coeffs := make([]complex128, n/2+1)
	seq := make([]float64, n)

	order := cfg.NumCeps - 1
	auditory := applyBank(spec, fb)
	ceps := make([][]float64, len(auditory))
	for i, row := range auditory {
		for j, v := range row {
			coeffs[j] = complex(math.Cbrt(v*loudness[j]), 0)
		}
		seq = ifft.Sequence(seq, coeffs)
		r := make([]float64, order+1)
		for k := range r {
			r[k] = seq[k] / float64(n)
		}
		a, e := levinson(r, order)
		ceps[i] = lpcToCepstrum(a, e, cfg.NumCeps)
	}

	if cfg.Lifter != 0 {
		lifter(ceps, cfg.Lifter)
	}
	if cfg.Normalize {
		meanVarianceNormalize(ceps)
	}
	return ceps, nil
}

// equalLoudness approximates the ear's sensitivity at angular frequency w.
func equalLoudness(w float64) float64 {
	w2 := w * w
	num := (w2 + 56.8e6) * w2 * w2
	den := (w2 + 6.3e6) * (w2 + 6.3e6) * (w2 + 0.38e9) * (w2*w2*w2 + 9.58e26)
	return num / den
}
