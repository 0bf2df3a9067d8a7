package domain

import (
	"crypto/rand"
	"encoding/base32"
	"path"
	"strings"
	"time"
)

type MediaKind string

const (
	MediaKindAudio MediaKind = "audio"
	MediaKindVideo MediaKind = "video"
)

type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusFailed     VideoStatus = "failed"
)

// Content is the owning record for an uploaded master file. Workers read the
// source URL and current encoding extension from it; the video pipeline
// writes manifest/thumbnail URLs and a terminal status back onto it.
type Content struct {
	ID           string
	Kind         MediaKind
	Title        string
	SourceURL    string
	SourceExt    string
	VideoStatus  VideoStatus
	ManifestURL  string
	ThumbURL     string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewContent(kind MediaKind, title, sourceURL string) *Content {
	now := time.Now()
	return &Content{
		ID:          generateID(),
		Kind:        kind,
		Title:       title,
		SourceURL:   sourceURL,
		SourceExt:   ExtFromURL(sourceURL),
		VideoStatus: VideoStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func generateID() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base32.StdEncoding.EncodeToString(b)[:8]
}

// ExtFromURL returns the lowercased extension of a URL path, query stripped.
func ExtFromURL(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}
