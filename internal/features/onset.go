package features

import (
	"math"
	"math/cmplx"
)

const (
	minBPM    = 30.0
	maxBPM    = 300.0
	priorBPM  = 120.0
	priorStd  = 1.0 // octaves
	plpWindow = 384 // onset frames, about 9 s at 22050/512
)

// onsetStrength is the half-wave rectified spectral flux of a dB mel
// spectrogram, averaged over bands. The first frame has no predecessor
// and is 0.
func onsetStrength(melDB [][]float64) []float64 {
	env := make([]float64, len(melDB))
	for t := 1; t < len(melDB); t++ {
		var sum float64
		for b, v := range melDB[t] {
			if d := v - melDB[t-1][b]; d > 0 {
				sum += d
			}
		}
		if len(melDB[t]) > 0 {
			env[t] = sum / float64(len(melDB[t]))
		}
	}
	return env
}

// estimateTempo picks the autocorrelation lag of the onset envelope that
// best fits a log-normal prior around 120 BPM. It returns 0 when the
// envelope carries no onsets or is too short for any candidate lag.
func estimateTempo(onset []float64, frameRate float64) float64 {
	var total float64
	for _, v := range onset {
		total += v
	}
	if total == 0 || frameRate <= 0 {
		return 0
	}

	minLag := int(math.Ceil(60 * frameRate / maxBPM))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(math.Floor(60 * frameRate / minBPM))
	if maxLag > len(onset)-1 {
		maxLag = len(onset) - 1
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var ac float64
		for t := 0; t+lag < len(onset); t++ {
			ac += onset[t] * onset[t+lag]
		}
		bpm := 60 * frameRate / float64(lag)
		octaves := math.Log2(bpm / priorBPM)
		score := ac * math.Exp(-0.5*(octaves/priorStd)*(octaves/priorStd))
		if score > bestScore {
			bestLag, bestScore = lag, score
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60 * frameRate / float64(bestLag)
}

// pulseCurve estimates a predominant local pulse at the given tempo: each
// window's phase at the tempo frequency is turned into a cosine kernel and
// overlap-added. The result is half-wave rectified and scaled to a peak of 1.
func pulseCurve(onset []float64, tempo, frameRate float64) []float64 {
	pulse := make([]float64, len(onset))
	if tempo <= 0 || frameRate <= 0 || len(onset) == 0 {
		return pulse
	}

	win := plpWindow
	if win > len(onset) {
		win = len(onset)
	}
	w := hann(win)
	freq := tempo / 60 / frameRate // cycles per onset frame
	half := win / 2

	for center := 0; center < len(onset); center++ {
		var c complex128
		for i := 0; i < win; i++ {
			t := center - half + i
			if t < 0 || t >= len(onset) {
				continue
			}
			c += complex(w[i]*onset[t], 0) * cmplx.Exp(complex(0, -2*math.Pi*freq*float64(i)))
		}
		if cmplx.Abs(c) == 0 {
			continue
		}
		phase := cmplx.Phase(c)
		for i := 0; i < win; i++ {
			t := center - half + i
			if t < 0 || t >= len(onset) {
				continue
			}
			pulse[t] += w[i] * math.Cos(2*math.Pi*freq*float64(i)+phase)
		}
	}

	peak := 0.0
	for i, v := range pulse {
		if v < 0 {
			pulse[i] = 0
		} else if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return pulse
	}
	for i := range pulse {
		pulse[i] /= peak
	}
	return pulse
}
