package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/maastricht-university/stress-features/features"
)

// LPC fits an all-pole model of order cfg.NumCeps-1 to every windowed
// frame. It returns one row of NumCeps coefficients per frame, leading 1
// included, and the per-frame model gain.
func LPC(sig []float64, fs int, cfg features.Config) ([][]float64, []float64, error) {
	if cfg.NumCeps < 2 {
		return nil, nil, fmt.Errorf("%w: lpc order %d", ErrInvalidParameter, cfg.NumCeps-1)
	}
	frames, err := windowedFrames(sig, fs, cfg)
	if err != nil {
		return nil, nil, err
	}

	order := cfg.NumCeps - 1
	coeffs := make([][]float64, len(frames))
	gains := make([]float64, len(frames))
	for i, f := range frames {
		a, e := levinson(autocorrelation(f, order), order)
		coeffs[i] = a
		gains[i] = math.Sqrt(e)
	}
	return coeffs, gains, nil
}

// autocorrelation returns lags 0..maxLag of x.
func autocorrelation(x []float64, maxLag int) []float64 {
	r := make([]float64, maxLag+1)
	for k := 0; k <= maxLag && k < len(x); k++ {
		r[k] = floats.Dot(x[:len(x)-k], x[k:])
	}
	return r
}

// levinson solves the Yule-Walker equations for predictor a (a[0] = 1) and
// returns the residual energy. A silent frame yields a = [1 0 ... 0], e = 0.
func levinson(r []float64, order int) ([]float64, float64) {
	a := make([]float64, order+1)
	a[0] = 1
	e := r[0]
	if e <= 0 {
		return a, 0
	}

	prev := make([]float64, order+1)
	for i := 1; i <= order; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc += a[j] * r[i-j]
		}
		k := -acc / e

		copy(prev, a)
		for j := 1; j < i; j++ {
			a[j] = prev[j] + k*prev[i-j]
		}
		a[i] = k

		e *= 1 - k*k
		if e <= 0 {
			e = 0
			break
		}
	}
	return a, e
}

// lpcToCepstrum converts predictor a and residual energy e into n cepstral
// coefficients, c[0] = ln(e).
func lpcToCepstrum(a []float64, e float64, n int) []float64 {
	p := len(a) - 1
	c := make([]float64, n)
	c[0] = math.Log(nonZero(e))
	for m := 1; m < n; m++ {
		var acc float64
		if m <= p {
			acc = -a[m]
		}
		for k := 1; k < m; k++ {
			if m-k <= p {
				acc -= float64(k) / float64(m) * c[k] * a[m-k]
			}
		}
		c[m] = acc
	}
	return c
}
