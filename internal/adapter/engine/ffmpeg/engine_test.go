package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavehaus/transcode/internal/domain"
)

type failingFetcher struct {
	err error
}

func (f *failingFetcher) Fetch(ctx context.Context, url, destDir string) (string, func(), error) {
	return "", func() {}, f.err
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid path", "/tmp/track.wav", nil},
		{"valid path with spaces", "/tmp/my track.wav", nil},
		{"relative path", "track.wav", nil},
		{"empty path", "", ErrEmptyPath},
		{"null byte at start", "\x00/tmp/track.wav", ErrInvalidPath},
		{"null byte in middle", "/tmp/\x00track.wav", ErrInvalidPath},
		{"null byte at end", "/tmp/track.wav\x00", ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePath(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestBuildAudioArgs(t *testing.T) {
	profile, ok := domain.ProfileFor(domain.FormatMP3320)
	require.True(t, ok)

	args := buildAudioArgs("/in/master.flac", profile, "/out/x.mp3")

	assert.Equal(t, []string{"-i", "/in/master.flac", "-c:a", "libmp3lame", "-vn",
		"-b:a", "320k", "-ar", "44100", "-ac", "2", "-y", "/out/x.mp3"}, args)
}

func TestOutputName_Unique(t *testing.T) {
	profile, _ := domain.ProfileFor(domain.FormatFLACCD)

	a := outputName(profile)
	b := outputName(profile)

	assert.NotEqual(t, a, b, "names must be collision-resistant")
	assert.True(t, strings.HasSuffix(a, ".flac"))
	assert.True(t, strings.HasPrefix(a, "flac_cd_"))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://cdn.test/a.wav"))
	assert.True(t, isRemote("http://cdn.test/a.wav"))
	assert.False(t, isRemote("/tmp/a.wav"))
	assert.False(t, isRemote("a.wav"))
}

func TestTranscode_UnknownFormat(t *testing.T) {
	e := &Engine{ffmpegPath: "ffmpeg", fetcher: &failingFetcher{}}

	_, err := e.Transcode(context.Background(), "/tmp/a.wav", "opus_96", t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTranscode_FetchFailureIsEngineError(t *testing.T) {
	fetchErr := &domain.FetchError{URL: "https://dead.test/a.wav", Err: errors.New("connection refused")}
	e := &Engine{ffmpegPath: "ffmpeg", fetcher: &failingFetcher{err: fetchErr}}

	_, err := e.Transcode(context.Background(), "https://dead.test/a.wav", domain.FormatMP3320, t.TempDir())

	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.FormatMP3320, engineErr.Format)
	assert.ErrorIs(t, err, fetchErr)
}

func TestTranscodeAllFormats_UnreachableSource(t *testing.T) {
	fetchErr := &domain.FetchError{URL: "https://dead.test/a.wav", Err: errors.New("no route to host")}
	e := &Engine{ffmpegPath: "ffmpeg", fetcher: &failingFetcher{err: fetchErr}}

	results, failures := e.TranscodeAllFormats(context.Background(), "https://dead.test/a.wav", t.TempDir())

	assert.Empty(t, results)
	require.Len(t, failures, 5, "one failure per catalog format")
	seen := make(map[domain.FormatKey]bool)
	for _, f := range failures {
		assert.Error(t, f.Err)
		seen[f.Format] = true
	}
	assert.Len(t, seen, 5, "each failure names a distinct format")
}

func TestWriteMasterPlaylist(t *testing.T) {
	e := &Engine{ffmpegPath: "ffmpeg"}
	dir := t.TempDir()

	path, err := e.WriteMasterPlaylist(domain.VideoRenditions(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "master.m3u8"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	manifest := string(data)

	assert.True(t, strings.HasPrefix(manifest, "#EXTM3U\n"))
	assert.Contains(t, manifest, "#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=854x480\n480p.m3u8")
	assert.Contains(t, manifest, "#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720\n720p.m3u8")
	assert.Contains(t, manifest, "#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080\n1080p.m3u8")
}

func TestStderrTail(t *testing.T) {
	short := []byte("short output")
	assert.Equal(t, "short output", stderrTail(short))

	long := make([]byte, stderrTailBytes*2)
	for i := range long {
		long[i] = 'x'
	}
	tail := stderrTail(long)
	assert.Len(t, tail, stderrTailBytes+3)
	assert.True(t, strings.HasPrefix(tail, "..."))
}
