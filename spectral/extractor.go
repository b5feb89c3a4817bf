package spectral

import (
	"context"
	"fmt"

	"github.com/maastricht-university/stress-features/features"
)

type extractFunc func(sig []float64, fs int, cfg features.Config) ([][]float64, error)

var extractors = map[features.Type]extractFunc{
	features.MFCC: MFCC,
	features.LFCC: LFCC,
	features.PLP:  PLP,
	features.LPC:  lpcMatrix,
}

// lpcMatrix drops the gain vector so every type yields a single matrix.
func lpcMatrix(sig []float64, fs int, cfg features.Config) ([][]float64, error) {
	coeffs, _, err := LPC(sig, fs, cfg)
	return coeffs, err
}

// Extractor computes features in process.
type Extractor struct{}

// NewExtractor returns the in-process feature extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract implements features.Extractor.
func (*Extractor) Extract(_ context.Context, t features.Type, cfg features.Config, samples []float64, sampleRate int) ([][]float64, error) {
	fn, ok := extractors[t]
	if !ok {
		return nil, fmt.Errorf("%w: coefficient type %v", ErrInvalidParameter, t)
	}
	return fn(samples, sampleRate, cfg)
}
