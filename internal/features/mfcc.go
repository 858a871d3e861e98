package features

import "math"

const (
	// Slaney mel scale: linear below 1 kHz, logarithmic above.
	melLinearStep = 200.0 / 3
	melLogMinHz   = 1000.0
	melLogMin     = melLogMinHz / melLinearStep

	amin  = 1e-10
	topDB = 80.0
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(f float64) float64 {
	if f < melLogMinHz {
		return f / melLinearStep
	}
	return melLogMin + math.Log(f/melLogMinHz)/melLogStep
}

func melToHz(m float64) float64 {
	if m < melLogMin {
		return m * melLinearStep
	}
	return melLogMinHz * math.Exp(melLogStep*(m-melLogMin))
}

// melFilter is one triangular filter stored over its non-zero bins.
type melFilter struct {
	start   int
	weights []float64
}

// melFilterBank returns nMels area-normalised triangular filters over the
// n/2+1 FFT bins, spanning 0 Hz to Nyquist.
func melFilterBank(sampleRate, n, nMels int) []melFilter {
	bins := n/2 + 1
	maxMel := hzToMel(float64(sampleRate) / 2)
	hz := make([]float64, nMels+2)
	for i := range hz {
		hz[i] = melToHz(maxMel * float64(i) / float64(nMels+1))
	}

	fb := make([]melFilter, nMels)
	for i := range fb {
		lo, mid, hi := hz[i], hz[i+1], hz[i+2]
		norm := 2 / (hi - lo)
		filter := melFilter{start: -1}
		for k := 0; k < bins; k++ {
			f := binFrequency(k, sampleRate, n)
			w := math.Min((f-lo)/(mid-lo), (hi-f)/(hi-mid))
			if w <= 0 {
				if filter.start >= 0 {
					break
				}
				continue
			}
			if filter.start < 0 {
				filter.start = k
			}
			filter.weights = append(filter.weights, w*norm)
		}
		if filter.start < 0 {
			filter.start = 0
		}
		fb[i] = filter
	}
	return fb
}

// melSpectrogram projects each frame's power spectrum onto the filter bank.
func melSpectrogram(mags [][]float64, fb []melFilter) [][]float64 {
	out := make([][]float64, len(mags))
	for t, m := range mags {
		row := make([]float64, len(fb))
		for b, filter := range fb {
			var sum float64
			for i, w := range filter.weights {
				v := m[filter.start+i]
				sum += w * v * v
			}
			row[b] = sum
		}
		out[t] = row
	}
	return out
}

// powerToDB converts to decibels, flooring at topDB below the loudest cell.
func powerToDB(power [][]float64) [][]float64 {
	out := make([][]float64, len(power))
	peak := math.Inf(-1)
	for t, row := range power {
		db := make([]float64, len(row))
		for b, p := range row {
			db[b] = 10 * math.Log10(math.Max(p, amin))
			peak = math.Max(peak, db[b])
		}
		out[t] = db
	}
	floor := peak - topDB
	for _, row := range out {
		for b := range row {
			if row[b] < floor {
				row[b] = floor
			}
		}
	}
	return out
}

// dctBasis is the orthonormal type-II DCT matrix truncated to k rows.
func dctBasis(n, k int) [][]float64 {
	basis := make([][]float64, k)
	for j := range basis {
		scale := math.Sqrt(2 / float64(n))
		if j == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		row := make([]float64, n)
		for i := range row {
			row[i] = scale * math.Cos(math.Pi*float64(j)*(2*float64(i)+1)/(2*float64(n)))
		}
		basis[j] = row
	}
	return basis
}

func dct2(x []float64, basis [][]float64) []float64 {
	out := make([]float64, len(basis))
	for j, row := range basis {
		var sum float64
		for i, v := range x {
			sum += v * row[i]
		}
		out[j] = sum
	}
	return out
}

// mfcc returns the first nMFCC cepstral coefficients of every frame,
// flattened frame by frame.
func mfcc(melDB [][]float64, nMFCC int) []float64 {
	if len(melDB) == 0 {
		return nil
	}
	basis := dctBasis(len(melDB[0]), nMFCC)
	out := make([]float64, 0, len(melDB)*nMFCC)
	for _, row := range melDB {
		out = append(out, dct2(row, basis)...)
	}
	return out
}
