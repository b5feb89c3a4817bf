package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/stress-features/features"
)

// MFCC computes mel frequency cepstral coefficients.
func MFCC(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	return filterBankCepstra(sig, fs, cfg, melBank)
}

// LFCC computes linear frequency cepstral coefficients.
func LFCC(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	return filterBankCepstra(sig, fs, cfg, linearBank)
}

type bankFunc func(nfilts, nfft, fs int, low, high float64) ([][]float64, error)

func filterBankCepstra(sig []float64, fs int, cfg features.Config, bank bankFunc) ([][]float64, error) {
	if cfg.NumCeps <= 0 || cfg.NumCeps > cfg.Filters {
		return nil, fmt.Errorf("%w: %d cepstra from %d filters", ErrInvalidParameter, cfg.NumCeps, cfg.Filters)
	}
	low, high, err := frequencyRange(cfg.LowFreq, cfg.HighFreq, fs)
	if err != nil {
		return nil, err
	}
	spec, err := spectrogram(sig, fs, cfg)
	if err != nil {
		return nil, err
	}
	fb, err := bank(cfg.Filters, cfg.FFTSize, fs, low, high)
	if err != nil {
		return nil, err
	}

	energies := applyBank(spec, fb)
	dct := newDCT(cfg.Filters, cfg.NumCeps)
	ceps := make([][]float64, len(energies))
	for i, row := range energies {
		for j, e := range row {
			row[j] = math.Log(nonZero(e))
		}
		ceps[i] = dct.transform(row)
	}
	if cfg.Lifter != 0 {
		lifter(ceps, cfg.Lifter)
	}
	if cfg.Normalize {
		meanVarianceNormalize(ceps)
	}
	return ceps, nil
}

// spectrogram runs pre-emphasis, framing, windowing and the power FFT.
func spectrogram(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	if cfg.FFTSize <= 0 {
		return nil, fmt.Errorf("%w: nfft %d", ErrInvalidParameter, cfg.FFTSize)
	}
	frames, err := windowedFrames(sig, fs, cfg)
	if err != nil {
		return nil, err
	}
	return powerSpectrum(frames, cfg.FFTSize), nil
}

func windowedFrames(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, fs)
	}
	if cfg.PreEmphasis {
		sig = preEmphasis(sig, cfg.PreEmphasisCoeff)
	}
	frameLen, frameStep, err := frameSizes(cfg.Window.Length, cfg.Window.Hop, fs)
	if err != nil {
		return nil, err
	}
	frames, err := frameSignal(sig, frameLen, frameStep)
	if err != nil {
		return nil, err
	}
	if err := windowFrames(frames, cfg.Window.Shape); err != nil {
		return nil, err
	}
	return frames, nil
}

func nonZero(v float64) float64 {
	if v == 0 {
		return eps
	}
	return v
}

// dctII is an orthonormal DCT-II of fixed length that keeps the leading
// coefficients. CosSequence yields 4·Σ x[j]·cos(πk(2j+1)/2n).
type dctII struct {
	fft  *fourier.QuarterWaveFFT
	n    int
	keep int
	buf  []float64
}

func newDCT(n, keep int) *dctII {
	return &dctII{fft: fourier.NewQuarterWaveFFT(n), n: n, keep: keep, buf: make([]float64, n)}
}

func (d *dctII) transform(x []float64) []float64 {
	d.buf = d.fft.CosSequence(d.buf, x)
	scale0 := math.Sqrt(1/float64(d.n)) / 4
	scale := math.Sqrt(2/float64(d.n)) / 4
	out := make([]float64, d.keep)
	out[0] = d.buf[0] * scale0
	for k := 1; k < d.keep; k++ {
		out[k] = d.buf[k] * scale
	}
	return out
}

// lifter scales column i by i^l, leaving column 0 untouched. Exponents
// outside (0, 10] leave the matrix unchanged.
func lifter(ceps [][]float64, l float64) {
	if l <= 0 || l > 10 {
		return
	}
	for _, row := range ceps {
		for i := 1; i < len(row); i++ {
			row[i] *= math.Pow(float64(i), l)
		}
	}
}

// meanVarianceNormalize rescales every column to zero mean and unit
// variance. Constant columns are only centred.
func meanVarianceNormalize(m [][]float64) {
	if len(m) == 0 {
		return
	}
	col := make([]float64, len(m))
	for j := range m[0] {
		for i, row := range m {
			col[i] = row[j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)
		flat := std <= 1e-10*math.Max(1, math.Abs(mean))
		for _, row := range m {
			row[j] -= mean
			if !flat {
				row[j] /= std
			}
		}
	}
}
