package features

import (
	"fmt"
	"strings"
)

// Type is one of the four coefficient families computed per recording.
type Type int

const (
	MFCC Type = iota
	LFCC
	PLP
	LPC
)

// Types lists every coefficient type in processing order.
var Types = []Type{MFCC, LFCC, PLP, LPC}

var typeNames = [...]string{
	MFCC: "mfccs",
	LFCC: "lfccs",
	PLP:  "plps",
	LPC:  "lpcs",
}

// String returns the identifier used in output paths and CSV rows.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType maps an identifier such as "plps" back to its Type.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown coefficient type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return nil, fmt.Errorf("unknown coefficient type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window describes the sliding analysis window.
type Window struct {
	Length float64 `json:"length"` // seconds
	Hop    float64 `json:"hop"`    // seconds
	Shape  string  `json:"shape"`
}

// Config is the fixed extraction setup of one coefficient type.
// A zero HighFreq means the Nyquist frequency of the signal.
type Config struct {
	PreEmphasis      bool    `json:"pre_emphasis"`
	PreEmphasisCoeff float64 `json:"pre_emphasis_coeff"`
	Window           Window  `json:"window"`
	Filters          int     `json:"filters,omitempty"`
	FFTSize          int     `json:"fft_size,omitempty"`
	LowFreq          float64 `json:"low_freq"`
	HighFreq         float64 `json:"high_freq"`
	// NumCeps is the column count for cepstral types and the model order for
	// the linear prediction types.
	NumCeps   int     `json:"num_ceps"`
	Lifter    float64 `json:"lifter,omitempty"`
	Normalize bool    `json:"normalize"`
}

var analysisWindow = Window{Length: 0.03, Hop: 0.015, Shape: "hamming"}

var configs = [...]Config{
	MFCC: {
		PreEmphasis:      true,
		PreEmphasisCoeff: 0.97,
		Window:           analysisWindow,
		Filters:          128,
		FFTSize:          2048,
		LowFreq:          0,
		HighFreq:         8000,
		NumCeps:          128,
		Normalize:        true,
	},
	LFCC: {
		PreEmphasis:      true,
		PreEmphasisCoeff: 0.97,
		Window:           analysisWindow,
		Filters:          128,
		FFTSize:          2048,
		LowFreq:          0,
		HighFreq:         8000,
		NumCeps:          128,
		Normalize:        true,
	},
	PLP: {
		PreEmphasisCoeff: 0.97,
		Window:           analysisWindow,
		Filters:          128,
		FFTSize:          1024,
		LowFreq:          0,
		HighFreq:         0,
		NumCeps:          13,
		Lifter:           0.9,
		Normalize:        true,
	},
	LPC: {
		PreEmphasisCoeff: 0.97,
		Window:           analysisWindow,
		NumCeps:          13,
	},
}

// ConfigFor returns the extraction configuration of t.
func ConfigFor(t Type) Config {
	if t < 0 || int(t) >= len(configs) {
		panic(fmt.Sprintf("features: no configuration for %v", t))
	}
	return configs[t]
}
