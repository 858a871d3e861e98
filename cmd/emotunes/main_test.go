package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTone(t *testing.T, sr int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := make([]int, 2*sr)
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*440*float64(i)/float64(sr)))
	}
	enc := wav.NewEncoder(f, sr, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: 1, SampleRate: sr}, Data: data, SourceBitDepth: 16}))
	require.NoError(t, enc.Close())
	return path
}

func TestClassify_Text(t *testing.T) {
	out, err := run(t, "classify", "--valence", "0.8", "--energy", "0.7")
	require.NoError(t, err)
	assert.Contains(t, out, "Classifier: happy")
	assert.Contains(t, out, "Ranges:     happy")
}

func TestClassify_DisagreementJSON(t *testing.T) {
	out, err := run(t, "classify", "--valence", "0.2", "--energy", "0.9", "--output", "json")
	require.NoError(t, err)

	var res classifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Classified)
	require.NotNil(t, res.Matched)
	assert.Equal(t, domain.MoodEnergetic, *res.Classified)
	assert.Equal(t, domain.MoodAngry, *res.Matched)
}

func TestClassify_RequiresFlags(t *testing.T) {
	_, err := run(t, "classify", "--valence", "0.5")
	assert.Error(t, err)
}

func TestMoods(t *testing.T) {
	out, err := run(t, "moods")
	require.NoError(t, err)
	for _, m := range domain.Moods {
		assert.Contains(t, out, m.String())
	}
	assert.Contains(t, out, "MOOD")

	out, err = run(t, "moods", "--output", "json")
	require.NoError(t, err)
	var rows []moodRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, len(domain.Moods))
	assert.Equal(t, domain.MoodHappy, rows[0].Mood)
	assert.InDelta(t, 0.6, rows[0].Ranges[domain.FeatureValence].Min, 1e-9)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "moods", "--output", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestAnalyze_LocalFile(t *testing.T) {
	t.Setenv("SAMPLE_RATE", "8000")
	t.Setenv("HOP_LENGTH", "100")
	path := writeTone(t, 8000)

	out, err := run(t, "analyze", path, "--output", "json")
	require.NoError(t, err)

	var outcome struct {
		Status   domain.AnalysisStatus `json:"status"`
		Analysis *domain.Analysis      `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, domain.AnalysisOK, outcome.Status)
	require.NotNil(t, outcome.Analysis)
	assert.Equal(t, "tone", outcome.Analysis.Title)
	assert.Greater(t, outcome.Analysis.Features.Energy, 0.0)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "local input must not be deleted")
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorContains(t, err, "analysis unavailable")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://example.com/a.mp3"))
	assert.True(t, isRemote("HTTP://example.com/a.mp3"))
	assert.False(t, isRemote("./song.wav"))
	assert.False(t, isRemote("/tmp/http.wav"))
}
