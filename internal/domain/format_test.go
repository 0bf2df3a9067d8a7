package domain

import (
	"strings"
	"testing"
)

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(); err != nil {
		t.Fatalf("catalog invalid: %v", err)
	}
}

func TestAudioProfiles_Contract(t *testing.T) {
	profiles := AudioProfiles()
	if len(profiles) != 5 {
		t.Fatalf("got %d profiles, want 5", len(profiles))
	}

	seen := make(map[string]bool)
	for _, p := range profiles {
		if p.SampleRate < 44100 {
			t.Errorf("%s: sample rate %d < 44100", p.Key, p.SampleRate)
		}
		if p.Channels != 2 {
			t.Errorf("%s: channels %d, want 2", p.Key, p.Channels)
		}
		ext := strings.ToLower(p.Extension)
		if seen[ext] {
			t.Errorf("%s: duplicate extension %s", p.Key, ext)
		}
		seen[ext] = true
		if !strings.HasPrefix(p.Extension, ".") {
			t.Errorf("%s: extension %q missing leading dot", p.Key, p.Extension)
		}
		if p.ContentType == "" {
			t.Errorf("%s: missing content type", p.Key)
		}
		if len(p.Platforms) == 0 {
			t.Errorf("%s: no target platforms", p.Key)
		}
	}
}

func TestProfileFor(t *testing.T) {
	p, ok := ProfileFor(FormatMP3320)
	if !ok {
		t.Fatal("mp3_320 not in catalog")
	}
	if p.Extension != ".mp3" {
		t.Errorf("extension = %q, want .mp3", p.Extension)
	}

	if _, ok := ProfileFor("opus_96"); ok {
		t.Error("unknown format key should not resolve")
	}
}

func TestVideoRenditions_Order(t *testing.T) {
	renditions := VideoRenditions()
	if len(renditions) != 3 {
		t.Fatalf("got %d renditions, want 3", len(renditions))
	}
	for i := 1; i < len(renditions); i++ {
		if renditions[i].Bandwidth <= renditions[i-1].Bandwidth {
			t.Errorf("rendition %s bandwidth not increasing", renditions[i].Name)
		}
		if renditions[i].Height <= renditions[i-1].Height {
			t.Errorf("rendition %s height not increasing", renditions[i].Name)
		}
	}
}
