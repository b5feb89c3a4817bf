package audio

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Format tags of the fmt chunk. Extensible files carry integer PCM in the
// layouts go-audio decodes by bit depth.
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// ErrUnsupportedFormat is returned for RIFF files that are not integer PCM,
// IEEE float included.
var ErrUnsupportedFormat = errors.New("unsupported wav format")

// Signal is a decoded recording. Samples keep the integer scale of the
// source file; multichannel input is mixed down to mono.
type Signal struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	if s == nil || s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Decode reads a PCM wav file.
func Decode(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("decode %s: invalid wav file", path)
	}
	switch d.WavAudioFormat {
	case wavFormatPCM, wavFormatExtensible:
	default:
		return nil, fmt.Errorf("decode %s: %w (format %d)", path, ErrUnsupportedFormat, d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode %s: missing sample rate", path)
	}

	return &Signal{
		SampleRate: buf.Format.SampleRate,
		Samples:    mixdown(buf.Data, buf.Format.NumChannels),
	}, nil
}

func mixdown(data []int, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out
	}
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		out[i] = float64(sum) / float64(channels)
	}
	return out
}

// WriteWAV encodes mono 16-bit PCM samples to path. Values are truncated to
// integers.
func WriteWAV(path string, sampleRate int, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
