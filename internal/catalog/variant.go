package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned when an answer matches no known application variant.
var ErrUnknownVariant = errors.New("unknown application variant")

// Variant identifies the target application being patched.
type Variant int

const (
	// YouTube is the main video application.
	YouTube Variant = iota
	// YouTubeMusic is the music streaming application.
	YouTubeMusic
)

// ParseVariant maps an operator's answer to a variant.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseVariant(answer string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yt":
		return YouTube, nil
	case "ytm":
		return YouTubeMusic, nil
	default:
		return 0, fmt.Errorf("%q: %w", answer, ErrUnknownVariant)
	}
}

// String returns the variant's display name.
func (v Variant) String() string {
	if v == YouTubeMusic {
		return "YouTube Music"
	}

	return "YouTube"
}

// Slug returns the variant's name as used in mirror URLs and file names.
func (v Variant) Slug() string {
	if v == YouTubeMusic {
		return "youtube-music"
	}

	return "youtube"
}
