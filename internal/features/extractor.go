// Package features turns mono PCM samples into the descriptors used for
// mood classification.
//
// Valence here is a spectral-brightness proxy built from centroid and
// rolloff. It is not a measure of musical positiveness, and bright but
// sad recordings will score high.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

const (
	// EnergyCeiling is the frame RMS that maps to energy 1.0.
	EnergyCeiling = 0.2
	// TempoCeiling is the BPM at which the tempo half of danceability saturates.
	TempoCeiling = 200.0
	// MFCCVarianceScale normalises MFCC variance into instrumentalness.
	MFCCVarianceScale = 100.0

	rolloffPercent = 0.85
)

// Config holds the analysis parameters. Zero fields take the defaults.
type Config struct {
	SampleRate  int
	HopLength   int
	FrameLength int
	NMels       int
	NMFCC       int
}

// DefaultConfig matches the service's standard analysis settings.
func DefaultConfig() Config {
	return Config{
		SampleRate:  22050,
		HopLength:   512,
		FrameLength: 2048,
		NMels:       128,
		NMFCC:       20,
	}
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct {
	cfg Config
}

// NewExtractor fills unset fields of cfg from DefaultConfig.
func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.HopLength <= 0 {
		cfg.HopLength = def.HopLength
	}
	if cfg.FrameLength <= 0 {
		cfg.FrameLength = def.FrameLength
	}
	if cfg.NMels <= 0 {
		cfg.NMels = def.NMels
	}
	if cfg.NMFCC <= 0 {
		cfg.NMFCC = def.NMFCC
	}
	if cfg.NMFCC > cfg.NMels {
		cfg.NMFCC = cfg.NMels
	}
	return &Extractor{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Extract computes the feature vector for samples recorded at sampleRate
// (the configured rate when zero). The result is deterministic for a given
// input. Failures wrap domain.ErrExtraction.
func (e *Extractor) Extract(samples []float64, sampleRate int) (domain.AudioFeatures, error) {
	if sampleRate <= 0 {
		sampleRate = e.cfg.SampleRate
	}
	n, hop := e.cfg.FrameLength, e.cfg.HopLength
	if len(samples) < n {
		return domain.AudioFeatures{}, fmt.Errorf("features: %d samples is shorter than one %d-sample frame: %w",
			len(samples), n, domain.ErrExtraction)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.AudioFeatures{}, fmt.Errorf("features: non-finite sample at %d: %w", i, domain.ErrExtraction)
		}
	}

	fft := fourier.NewFFT(n)
	spectrum := stft(samples, n, hop, hann(n), fft)
	mags := magnitudes(spectrum)
	nyquist := float64(sampleRate) / 2

	energy := EnergyFromRMS(stat.Mean(frameRMS(samples, n, hop), nil))

	centroids := make([]float64, len(mags))
	rolloffs := make([]float64, len(mags))
	for t, m := range mags {
		centroids[t] = spectralCentroid(m, sampleRate, n)
		rolloffs[t] = spectralRolloff(m, sampleRate, n, rolloffPercent)
	}
	valence := domain.Clamp01((stat.Mean(centroids, nil)/nyquist + stat.Mean(rolloffs, nil)/nyquist) / 2)

	melDB := powerToDB(melSpectrogram(mags, melFilterBank(sampleRate, n, e.cfg.NMels)))
	frameRate := float64(sampleRate) / float64(hop)
	onset := onsetStrength(melDB)
	tempo := estimateTempo(onset, frameRate)
	pulse := pulseCurve(onset, tempo, frameRate)

	danceability := domain.Clamp01((domain.Clamp01(tempo/TempoCeiling) + stat.Mean(pulse, nil)) / 2)

	coeffs := mfcc(melDB, e.cfg.NMFCC)
	instrumentalness := domain.Clamp01(stat.PopVariance(coeffs, nil) / MFCCVarianceScale)

	f := domain.NewAudioFeatures(tempo, valence, energy, danceability, instrumentalness)
	if !f.IsFinite() {
		return domain.AudioFeatures{}, fmt.Errorf("features: non-finite result %+v: %w", f, domain.ErrExtraction)
	}
	return f, nil
}

// EnergyFromRMS rescales a mean RMS amplitude into [0, 1]; anything at or
// above EnergyCeiling saturates at 1.
func EnergyFromRMS(rms float64) float64 {
	return domain.Clamp01(rms / EnergyCeiling)
}
