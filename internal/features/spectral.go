package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// frameCount is the number of whole frames of length n at the given hop.
func frameCount(length, n, hop int) int {
	if length < n {
		return 0
	}
	return 1 + (length-n)/hop
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// stft returns n/2+1 coefficients per frame.
func stft(x []float64, n, hop int, win []float64, fft *fourier.FFT) [][]complex128 {
	frames := frameCount(len(x), n, hop)
	spectrum := make([][]complex128, frames)
	buf := make([]float64, n)
	for t := 0; t < frames; t++ {
		start := t * hop
		for k := 0; k < n; k++ {
			buf[k] = x[start+k] * win[k]
		}
		spectrum[t] = fft.Coefficients(nil, buf)
	}
	return spectrum
}

func magnitudes(spectrum [][]complex128) [][]float64 {
	out := make([][]float64, len(spectrum))
	for t, row := range spectrum {
		m := make([]float64, len(row))
		for k, c := range row {
			m[k] = cmplx.Abs(c)
		}
		out[t] = m
	}
	return out
}

func frameRMS(x []float64, n, hop int) []float64 {
	frames := frameCount(len(x), n, hop)
	out := make([]float64, frames)
	for t := 0; t < frames; t++ {
		var sum float64
		for _, v := range x[t*hop : t*hop+n] {
			sum += v * v
		}
		out[t] = math.Sqrt(sum / float64(n))
	}
	return out
}

func binFrequency(k, sampleRate, n int) float64 {
	return float64(k) * float64(sampleRate) / float64(n)
}

// spectralCentroid is the magnitude-weighted mean frequency of one frame.
// Silent frames report 0.
func spectralCentroid(mag []float64, sampleRate, n int) float64 {
	var num, den float64
	for k, m := range mag {
		num += binFrequency(k, sampleRate, n) * m
		den += m
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// spectralRolloff is the lowest frequency below which pct of the frame's
// spectral magnitude lies.
func spectralRolloff(mag []float64, sampleRate, n int, pct float64) float64 {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0
	}
	threshold := pct * total
	var cum float64
	for k, m := range mag {
		cum += m
		if cum >= threshold {
			return binFrequency(k, sampleRate, n)
		}
	}
	return binFrequency(len(mag)-1, sampleRate, n)
}
