// Package audio fetches audio sources into scratch files and decodes them
// into mono float samples.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

const (
	// FormatMP3 and friends name the containers Fetcher can recognise.
	FormatMP3  = "mp3"
	FormatWAV  = "wav"
	FormatFLAC = "flac"
	FormatOGG  = "ogg"
	FormatM4A  = "m4a"

	defaultMaxBytes = 10 << 20
)

// formatByMIME maps sniffed MIME types to container names. Aliases such as
// audio/x-wav are resolved by mimetype.MIME.Is.
var formatByMIME = []struct {
	mime   string
	format string
}{
	{"audio/mpeg", FormatMP3},
	{"audio/wav", FormatWAV},
	{"audio/flac", FormatFLAC},
	{"audio/ogg", FormatOGG},
	{"audio/x-m4a", FormatM4A},
	{"audio/mp4", FormatM4A},
}

// FetcherConfig bounds what a Fetcher will accept.
type FetcherConfig struct {
	MaxBytes   int64
	Formats    []string
	ScratchDir string
	HTTPClient *http.Client
}

// Fetcher downloads or opens audio sources and checks their size and format.
type Fetcher struct {
	maxBytes   int64
	formats    map[string]bool
	scratchDir string
	client     *http.Client
	log        *zap.Logger
}

// NewFetcher builds a Fetcher. An empty format list allows mp3 and wav.
func NewFetcher(cfg FetcherConfig, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{FormatMP3, FormatWAV}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	formats := make(map[string]bool, len(cfg.Formats))
	for _, f := range cfg.Formats {
		formats[strings.ToLower(strings.TrimSpace(f))] = true
	}
	return &Fetcher{
		maxBytes:   cfg.MaxBytes,
		formats:    formats,
		scratchDir: cfg.ScratchDir,
		client:     cfg.HTTPClient,
		log:        log,
	}
}

// Scratch is a local audio file owned by one analysis.
type Scratch struct {
	Path   string
	Format string
	Size   int64

	owned bool
	once  sync.Once
	err   error
}

// NewScratch wraps an existing file. When owned is true, Release deletes it.
func NewScratch(path, format string, size int64, owned bool) *Scratch {
	return &Scratch{Path: path, Format: format, Size: size, owned: owned}
}

// Release removes the file if the Fetcher created it. It is safe to call
// more than once and on a nil Scratch.
func (s *Scratch) Release() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		if !s.owned {
			return
		}
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.err = fmt.Errorf("audio: remove scratch: %w", err)
		}
	})
	return s.err
}

// Fetch downloads url into a new scratch file. On any error the file has
// already been removed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Scratch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: build request: %v: %w", err, domain.ErrFetch)
	}

	// #nosec G107 -- callers submit arbitrary song URLs through the API
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio: get %s: %v: %w", url, err, domain.ErrFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("audio: get %s: status %d: %w", url, resp.StatusCode, domain.ErrFetch)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("audio: content length %d exceeds %d bytes: %w",
			resp.ContentLength, f.maxBytes, domain.ErrSizeLimitExceeded)
	}

	file, err := os.CreateTemp(f.scratchDir, "emotunes-*.audio")
	if err != nil {
		return nil, fmt.Errorf("audio: create scratch: %v: %w", err, domain.ErrFetch)
	}
	scratch := NewScratch(file.Name(), "", 0, true)

	ok := false
	defer func() {
		if !ok {
			if rerr := scratch.Release(); rerr != nil {
				f.log.Warn("scratch cleanup failed", zap.String("path", scratch.Path), zap.Error(rerr))
			}
		}
	}()

	n, err := io.Copy(file, io.LimitReader(resp.Body, f.maxBytes+1))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("audio: read body: %v: %w", err, domain.ErrFetch)
	}
	if n > f.maxBytes {
		return nil, fmt.Errorf("audio: body exceeds %d bytes: %w", f.maxBytes, domain.ErrSizeLimitExceeded)
	}
	scratch.Size = n

	format, err := f.sniff(scratch.Path)
	if err != nil {
		return nil, err
	}
	scratch.Format = format

	ok = true
	f.log.Debug("audio fetched",
		zap.String("source", url),
		zap.String("format", format),
		zap.Int64("bytes", n),
	)
	return scratch, nil
}

// Open checks a local file and wraps it in a Scratch. The file belongs to
// the caller, so Release leaves it in place.
func (f *Fetcher) Open(path string) (*Scratch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio: stat %s: %v: %w", path, err, domain.ErrFetch)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio: %s is a directory: %w", path, domain.ErrFetch)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("audio: file size %d exceeds %d bytes: %w",
			info.Size(), f.maxBytes, domain.ErrSizeLimitExceeded)
	}
	format, err := f.sniff(path)
	if err != nil {
		return nil, err
	}
	return NewScratch(path, format, info.Size(), false), nil
}

func (f *Fetcher) sniff(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("audio: detect format: %v: %w", err, domain.ErrUnsupportedFormat)
	}
	format := formatOf(mt)
	if format == "" || !f.formats[format] {
		return "", fmt.Errorf("audio: content type %s: %w", mt.String(), domain.ErrUnsupportedFormat)
	}
	return format, nil
}

func formatOf(mt *mimetype.MIME) string {
	for _, m := range formatByMIME {
		if mt.Is(m.mime) {
			return m.format
		}
	}
	return ""
}
