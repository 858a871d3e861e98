package audio

import (
	"errors"
	"os"

	"github.com/dhowden/tag"
)

// Tags is the subset of embedded metadata recorded with an analysis.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags reads ID3/MP4/FLAC/OGG metadata from path. Files without tags
// yield empty Tags and no error.
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	var t Tags
	m, err := tag.ReadFrom(f)
	switch {
	case err == nil:
		t = Tags{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}
	case errors.Is(err, tag.ErrNoTagsFound):
	default:
		return Tags{}, err
	}
	return t, nil
}
