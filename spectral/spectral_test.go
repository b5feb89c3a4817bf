package spectral

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/maastricht-university/stress-features/features"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func noise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2000 - 1000
	}
	return out
}

func TestFrameSignalPadsToWholeHop(t *testing.T) {
	sig := make([]float64, 16000)
	for i := range sig {
		sig[i] = 1
	}
	frameLen, frameStep, err := frameSizes(0.03, 0.015, 16000)
	if err != nil {
		t.Fatalf("frameSizes: %v", err)
	}
	if frameLen != 480 || frameStep != 240 {
		t.Fatalf("frame sizes = %d/%d, want 480/240", frameLen, frameStep)
	}
	frames, err := frameSignal(sig, frameLen, frameStep)
	if err != nil {
		t.Fatalf("frameSignal: %v", err)
	}
	if len(frames) != 66 {
		t.Fatalf("got %d frames, want 66", len(frames))
	}
	last := frames[len(frames)-1]
	if len(last) != 480 {
		t.Fatalf("last frame has %d samples", len(last))
	}
	// 16000 samples padded to 16080: the last frame holds 400 ones then 80 zeros.
	if last[399] != 1 || last[400] != 0 || last[479] != 0 {
		t.Fatalf("unexpected padding in last frame: %v %v %v", last[399], last[400], last[479])
	}
}

func TestFrameSignalExactFitIsNotPadded(t *testing.T) {
	frames, err := frameSignal(make([]float64, 720), 480, 240)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
}

func TestFrameSignalTooShort(t *testing.T) {
	_, err := frameSignal(make([]float64, 100), 480, 240)
	if !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("expected ErrSignalTooShort, got %v", err)
	}
}

func TestHammingShape(t *testing.T) {
	w := hamming(5)
	want := []float64{0.08, 0.54, 1, 0.54, 0.08}
	for i := range want {
		if !almostEqual(w[i], want[i], 1e-12) {
			t.Fatalf("hamming(5) = %v, want %v", w, want)
		}
	}
}

func TestPreEmphasis(t *testing.T) {
	got := preEmphasis([]float64{1, 2, 3}, 0.5)
	want := []float64{1, 1.5, 2}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("preEmphasis = %v, want %v", got, want)
		}
	}
}

func TestPowerSpectrumDC(t *testing.T) {
	spec := powerSpectrum([][]float64{{1, 1, 1, 1}}, 8)
	if len(spec[0]) != 5 {
		t.Fatalf("got %d bins, want 5", len(spec[0]))
	}
	if !almostEqual(spec[0][0], 2, 1e-12) {
		t.Fatalf("DC power = %v, want 2", spec[0][0])
	}
}

func TestPowerSpectrumPeak(t *testing.T) {
	const nfft = 64
	frame := make([]float64, nfft)
	for i := range frame {
		frame[i] = math.Cos(2 * math.Pi * 8 * float64(i) / nfft)
	}
	spec := powerSpectrum([][]float64{frame}, nfft)[0]
	peak := 0
	for k := range spec {
		if spec[k] > spec[peak] {
			peak = k
		}
	}
	if peak != 8 {
		t.Fatalf("peak at bin %d, want 8", peak)
	}
}

func TestFrequencyRange(t *testing.T) {
	low, high, err := frequencyRange(0, 0, 16000)
	if err != nil || low != 0 || high != 8000 {
		t.Fatalf("frequencyRange(0, 0) = %v, %v, %v", low, high, err)
	}
	if _, _, err := frequencyRange(0, 8000, 8000); !errors.Is(err, ErrInvalidFrequencyRange) {
		t.Fatalf("expected ErrInvalidFrequencyRange, got %v", err)
	}
	if _, _, err := frequencyRange(500, 400, 16000); !errors.Is(err, ErrInvalidFrequencyRange) {
		t.Fatalf("expected ErrInvalidFrequencyRange, got %v", err)
	}
}

func TestMelScaleInverse(t *testing.T) {
	for _, f := range []float64{0, 100, 1000, 8000} {
		if got := melToHz(hzToMel(f)); !almostEqual(got, f, 1e-6) {
			t.Fatalf("mel round trip of %v = %v", f, got)
		}
		if got := barkToHz(hzToBark(f)); !almostEqual(got, f, 1e-6) {
			t.Fatalf("bark round trip of %v = %v", f, got)
		}
	}
}

func TestTriangularBanksAreBounded(t *testing.T) {
	for name, build := range map[string]bankFunc{"mel": melBank, "linear": linearBank} {
		bank, err := build(26, 512, 16000, 0, 8000)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(bank) != 26 || len(bank[0]) != 257 {
			t.Fatalf("%s: shape %dx%d", name, len(bank), len(bank[0]))
		}
		for j, row := range bank {
			peak := 0.0
			for _, v := range row {
				if v < 0 || v > 1 {
					t.Fatalf("%s: filter %d has weight %v", name, j, v)
				}
				peak = math.Max(peak, v)
			}
			if peak == 0 {
				t.Fatalf("%s: filter %d is empty", name, j)
			}
		}
	}
}

func TestBarkBankCentres(t *testing.T) {
	bank, centres, err := barkBank(20, 512, 16000, 0, 8000)
	if err != nil {
		t.Fatal(err)
	}
	if len(bank) != 20 || len(centres) != 20 {
		t.Fatalf("got %d filters, %d centres", len(bank), len(centres))
	}
	for i := 1; i < len(centres); i++ {
		if centres[i] <= centres[i-1] {
			t.Fatalf("centres not increasing: %v", centres)
		}
	}
}

// dctBasis returns the first k rows of the orthonormal DCT-II of size n,
// written out from its definition.
func dctBasis(n, k int) [][]float64 {
	basis := make([][]float64, k)
	for i := range basis {
		s := math.Sqrt(2 / float64(n))
		if i == 0 {
			s = math.Sqrt(1 / float64(n))
		}
		row := make([]float64, n)
		for j := range row {
			row[j] = s * math.Cos(math.Pi*float64(i)*(2*float64(j)+1)/(2*float64(n)))
		}
		basis[i] = row
	}
	return basis
}

func TestDCTBasisIsOrthonormal(t *testing.T) {
	basis := dctBasis(8, 8)
	for i := range basis {
		for j := range basis {
			var dot float64
			for k := range basis[i] {
				dot += basis[i][k] * basis[j][k]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if !almostEqual(dot, want, 1e-12) {
				t.Fatalf("<b%d, b%d> = %v", i, j, dot)
			}
		}
	}
}

func TestLifter(t *testing.T) {
	m := [][]float64{{1, 1, 1}}
	lifter(m, 2)
	want := []float64{1, 1, 4}
	for i := range want {
		if !almostEqual(m[0][i], want[i], 1e-12) {
			t.Fatalf("lifter = %v, want %v", m[0], want)
		}
	}
	unchanged := [][]float64{{1, 2}}
	lifter(unchanged, 11)
	if unchanged[0][1] != 2 {
		t.Fatal("lifter above 10 should be a no-op")
	}
}

func TestMeanVarianceNormalize(t *testing.T) {
	m := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	meanVarianceNormalize(m)
	s := math.Sqrt(8.0 / 3.0)
	want := [][]float64{{-2 / s, 0}, {0, 0}, {2 / s, 0}}
	for i := range want {
		for j := range want[i] {
			if !almostEqual(m[i][j], want[i][j], 1e-12) {
				t.Fatalf("normalized = %v, want %v", m, want)
			}
		}
	}
}

func TestLevinsonRecoversAR1(t *testing.T) {
	const rho = 0.6
	r := []float64{1, rho, rho * rho, rho * rho * rho}
	a, e := levinson(r, 3)
	want := []float64{1, -rho, 0, 0}
	for i := range want {
		if !almostEqual(a[i], want[i], 1e-12) {
			t.Fatalf("a = %v, want %v", a, want)
		}
	}
	if !almostEqual(e, 1-rho*rho, 1e-12) {
		t.Fatalf("e = %v, want %v", e, 1-rho*rho)
	}

	c := lpcToCepstrum(a, e, 4)
	for m := 1; m < 4; m++ {
		if want := math.Pow(rho, float64(m)) / float64(m); !almostEqual(c[m], want, 1e-12) {
			t.Fatalf("c[%d] = %v, want %v", m, c[m], want)
		}
	}
}

func TestLevinsonSilentFrame(t *testing.T) {
	a, e := levinson([]float64{0, 0, 0}, 2)
	if a[0] != 1 || a[1] != 0 || a[2] != 0 || e != 0 {
		t.Fatalf("levinson(silence) = %v, %v", a, e)
	}
}

func TestExtractShapes(t *testing.T) {
	sig := noise(16000, 7)
	ext := NewExtractor()
	tests := []struct {
		typ  features.Type
		cols int
	}{
		{features.MFCC, 128},
		{features.LFCC, 128},
		{features.PLP, 13},
		{features.LPC, 13},
	}
	for _, tc := range tests {
		m, err := ext.Extract(context.Background(), tc.typ, features.ConfigFor(tc.typ), sig, 16000)
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		if len(m) != 66 {
			t.Fatalf("%s: %d frames, want 66", tc.typ, len(m))
		}
		for i, row := range m {
			if len(row) != tc.cols {
				t.Fatalf("%s: row %d has %d columns, want %d", tc.typ, i, len(row), tc.cols)
			}
			for j, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("%s: value [%d][%d] = %v", tc.typ, i, j, v)
				}
			}
		}
	}
}

func TestExtractSilenceIsFinite(t *testing.T) {
	sig := make([]float64, 16000)
	ext := NewExtractor()
	for _, typ := range features.Types {
		m, err := ext.Extract(context.Background(), typ, features.ConfigFor(typ), sig, 16000)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		for _, row := range m {
			for _, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("%s: non-finite value %v", typ, v)
				}
			}
		}
	}
}

func TestMFCCColumnsAreNormalized(t *testing.T) {
	m, err := MFCC(noise(16000, 3), 16000, features.ConfigFor(features.MFCC))
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 13; j++ {
		var sum float64
		for _, row := range m {
			sum += row[j]
		}
		if mean := sum / float64(len(m)); !almostEqual(mean, 0, 1e-9) {
			t.Fatalf("column %d mean = %v", j, mean)
		}
	}
}

func TestLPCLeadingCoefficientAndGains(t *testing.T) {
	coeffs, gains, err := LPC(noise(8000, 11), 8000, features.ConfigFor(features.LPC))
	if err != nil {
		t.Fatal(err)
	}
	if len(gains) != len(coeffs) {
		t.Fatalf("%d gains for %d frames", len(gains), len(coeffs))
	}
	for i, row := range coeffs {
		if row[0] != 1 {
			t.Fatalf("frame %d: a[0] = %v", i, row[0])
		}
		if gains[i] <= 0 {
			t.Fatalf("frame %d: gain %v", i, gains[i])
		}
	}
}

func TestExtractErrors(t *testing.T) {
	ext := NewExtractor()
	ctx := context.Background()

	_, err := ext.Extract(ctx, features.MFCC, features.ConfigFor(features.MFCC), noise(8000, 1), 8000)
	if !errors.Is(err, ErrInvalidFrequencyRange) {
		t.Fatalf("8 kHz mfcc: expected ErrInvalidFrequencyRange, got %v", err)
	}
	_, err = ext.Extract(ctx, features.LPC, features.ConfigFor(features.LPC), noise(100, 1), 16000)
	if !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("short lpc: expected ErrSignalTooShort, got %v", err)
	}
	_, err = ext.Extract(ctx, features.Type(42), features.Config{}, noise(100, 1), 16000)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown type: expected ErrInvalidParameter, got %v", err)
	}
}

func TestDCTMatchesDefinition(t *testing.T) {
	for _, tc := range []struct{ n, keep int }{{8, 8}, {128, 128}, {128, 13}} {
		x := make([]float64, tc.n)
		for j := range x {
			x[j] = math.Sin(0.37*float64(j)) + 0.01*float64(j)
		}
		got := newDCT(tc.n, tc.keep).transform(x)
		if len(got) != tc.keep {
			t.Fatalf("n=%d: got %d coefficients, want %d", tc.n, len(got), tc.keep)
		}
		for k, row := range dctBasis(tc.n, tc.keep) {
			var want float64
			for j := range row {
				want += row[j] * x[j]
			}
			if !almostEqual(got[k], want, 1e-9) {
				t.Fatalf("n=%d: coefficient %d = %v, want %v", tc.n, k, got[k], want)
			}
		}
	}
}

func TestDCTReusesBuffer(t *testing.T) {
	d := newDCT(4, 4)
	first := d.transform([]float64{1, 2, 3, 4})
	second := d.transform([]float64{1, 2, 3, 4})
	for k := range first {
		if first[k] != second[k] {
			t.Fatalf("repeated transform differs: %v vs %v", first, second)
		}
	}
	if !almostEqual(first[0], 5, 1e-12) {
		t.Fatalf("DC term = %v, want 5", first[0])
	}
}
