package domain

import (
	"fmt"
	"strings"
)

type FormatKey string

const (
	FormatMP3320 FormatKey = "mp3_320"
	FormatAAC256 FormatKey = "aac_256"
	FormatOggQ8  FormatKey = "ogg_q8"
	FormatFLACCD FormatKey = "flac_cd"
	FormatWAVPCM FormatKey = "wav_pcm"
)

// AudioProfile describes one delivery encoding. The catalog below is the
// single point of change for adding a new delivery format.
type AudioProfile struct {
	Key         FormatKey
	Extension   string
	Codec       string
	Flags       []string
	SampleRate  int
	Channels    int
	ContentType string
	Label       string
	Platforms   []string
}

var audioProfiles = []AudioProfile{
	{
		Key:         FormatMP3320,
		Extension:   ".mp3",
		Codec:       "libmp3lame",
		Flags:       []string{"-b:a", "320k", "-ar", "44100", "-ac", "2"},
		SampleRate:  44100,
		Channels:    2,
		ContentType: "audio/mpeg",
		Label:       "MP3 320kbps",
		Platforms:   []string{"spotify", "amazon-music", "direct-download"},
	},
	{
		Key:         FormatAAC256,
		Extension:   ".m4a",
		Codec:       "aac",
		Flags:       []string{"-b:a", "256k", "-ar", "44100", "-ac", "2"},
		SampleRate:  44100,
		Channels:    2,
		ContentType: "audio/mp4",
		Label:       "AAC 256kbps",
		Platforms:   []string{"apple-music", "youtube-music"},
	},
	{
		Key:         FormatOggQ8,
		Extension:   ".ogg",
		Codec:       "libvorbis",
		Flags:       []string{"-q:a", "8", "-ar", "44100", "-ac", "2"},
		SampleRate:  44100,
		Channels:    2,
		ContentType: "audio/ogg",
		Label:       "Ogg Vorbis q8",
		Platforms:   []string{"spotify", "web-player"},
	},
	{
		Key:         FormatFLACCD,
		Extension:   ".flac",
		Codec:       "flac",
		Flags:       []string{"-ar", "44100", "-ac", "2", "-sample_fmt", "s16"},
		SampleRate:  44100,
		Channels:    2,
		ContentType: "audio/flac",
		Label:       "FLAC 16/44.1",
		Platforms:   []string{"tidal", "qobuz", "direct-download"},
	},
	{
		Key:         FormatWAVPCM,
		Extension:   ".wav",
		Codec:       "pcm_s16le",
		Flags:       []string{"-ar", "44100", "-ac", "2"},
		SampleRate:  44100,
		Channels:    2,
		ContentType: "audio/wav",
		Label:       "WAV PCM 16/44.1",
		Platforms:   []string{"mastering", "direct-download"},
	},
}

// AudioProfiles returns the catalog in its fixed order.
func AudioProfiles() []AudioProfile {
	out := make([]AudioProfile, len(audioProfiles))
	copy(out, audioProfiles)
	return out
}

func AllFormatKeys() []FormatKey {
	keys := make([]FormatKey, 0, len(audioProfiles))
	for _, p := range audioProfiles {
		keys = append(keys, p.Key)
	}
	return keys
}

func ProfileFor(key FormatKey) (AudioProfile, bool) {
	for _, p := range audioProfiles {
		if p.Key == key {
			return p, true
		}
	}
	return AudioProfile{}, false
}

// ValidateCatalog enforces the catalog contract: at least CD-quality sample
// rate, stereo output, and a unique extension per profile so storage keys
// cannot collide.
func ValidateCatalog() error {
	seen := make(map[string]FormatKey, len(audioProfiles))
	for _, p := range audioProfiles {
		if p.SampleRate < 44100 {
			return fmt.Errorf("profile %s: sample rate %d below 44100", p.Key, p.SampleRate)
		}
		if p.Channels != 2 {
			return fmt.Errorf("profile %s: channel count %d, want 2", p.Key, p.Channels)
		}
		ext := strings.ToLower(p.Extension)
		if prev, ok := seen[ext]; ok {
			return fmt.Errorf("profiles %s and %s share extension %s", prev, p.Key, ext)
		}
		seen[ext] = p.Key
	}
	return nil
}

// Rendition is one resolution/bitrate variant of a video, referenced by the
// master manifest for adaptive playback.
type Rendition struct {
	Name      string
	Width     int
	Height    int
	Bitrate   string
	Bandwidth int
}

var videoRenditions = []Rendition{
	{Name: "480p", Width: 854, Height: 480, Bitrate: "1280k", Bandwidth: 1280000},
	{Name: "720p", Width: 1280, Height: 720, Bitrate: "2800k", Bandwidth: 2800000},
	{Name: "1080p", Width: 1920, Height: 1080, Bitrate: "5000k", Bandwidth: 5000000},
}

// VideoRenditions returns the fixed rendition ladder, low to high.
func VideoRenditions() []Rendition {
	out := make([]Rendition, len(videoRenditions))
	copy(out, videoRenditions)
	return out
}

const (
	// HLSSegmentSeconds is the fixed segment duration; keyframes are forced
	// on the same boundary so segments cut cleanly.
	HLSSegmentSeconds = 6

	// ThumbnailOffsetSeconds is the still-frame extraction offset.
	ThumbnailOffsetSeconds = 3
)
