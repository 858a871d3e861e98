package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// Samples is mono PCM in [-1, 1].
type Samples struct {
	Data       []float64
	SampleRate int
}

// Duration of the decoded signal.
func (s Samples) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / float64(s.SampleRate) * float64(time.Second))
}

// Decodable lists the formats Decode supports. The sniffer recognises more.
var Decodable = []string{FormatMP3, FormatWAV}

// CanDecode reports whether Decode has a decoder for format.
func CanDecode(format string) bool {
	for _, f := range Decodable {
		if f == format {
			return true
		}
	}
	return false
}

// Decode reads the scratch file, downmixes to mono and resamples to
// sampleRate. A sampleRate of zero keeps the native rate.
func Decode(s *Scratch, sampleRate int) (Samples, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return Samples{}, fmt.Errorf("audio: open %s: %v: %w", s.Path, err, domain.ErrExtraction)
	}
	defer file.Close()

	var out Samples
	switch s.Format {
	case FormatMP3:
		out, err = decodeMP3(file)
	case FormatWAV:
		out, err = decodeWAV(file)
	default:
		return Samples{}, fmt.Errorf("audio: no decoder for %q: %w", s.Format, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return Samples{}, fmt.Errorf("audio: decode %s: %v: %w", s.Format, err, domain.ErrExtraction)
	}
	if len(out.Data) == 0 {
		return Samples{}, fmt.Errorf("audio: decode %s: no samples: %w", s.Format, domain.ErrExtraction)
	}
	if sampleRate > 0 && sampleRate != out.SampleRate {
		out = Samples{Data: Resample(out.Data, out.SampleRate, sampleRate), SampleRate: sampleRate}
	}
	return out, nil
}

// decodeMP3 relies on go-mp3 always producing 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (Samples, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return Samples{}, err
	}

	var data []float64
	if n := d.Length(); n > 0 {
		data = make([]float64, 0, n/4)
	}
	buf := make([]byte, 4096)
	for {
		n, err := d.Read(buf)
		for i := 0; i+3 < n; i += 4 {
			l := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			r := int16(uint16(buf[i+2]) | uint16(buf[i+3])<<8)
			data = append(data, (float64(l)+float64(r))/2/32768.0)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Samples{}, err
		}
	}
	return Samples{Data: data, SampleRate: d.SampleRate()}, nil
}

func decodeWAV(r io.ReadSeeker) (Samples, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Samples{}, errors.New("invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Samples{}, err
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return Samples{}, errors.New("empty audio buffer")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	if depth <= 0 {
		return Samples{}, fmt.Errorf("unknown bit depth")
	}
	scale := math.Pow(2, float64(depth-1))
	offset := 0.0
	if depth == 8 {
		// 8-bit PCM is unsigned.
		offset = 128
	}

	frames := len(buf.Data) / channels
	data := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		data[i] = sum / float64(channels)
	}
	return Samples{Data: data, SampleRate: buf.Format.SampleRate}, nil
}

// Resample converts src from rate `from` to rate `to` by linear interpolation.
func Resample(src []float64, from, to int) []float64 {
	if from <= 0 || to <= 0 || from == to || len(src) == 0 {
		return src
	}
	n := int(math.Round(float64(len(src)) * float64(to) / float64(from)))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	step := float64(from) / float64(to)
	last := len(src) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = src[last]
			continue
		}
		frac := pos - float64(j)
		out[i] = src[j]*(1-frac) + src[j+1]*frac
	}
	return out
}
